package cocktail

import (
	"fmt"
	"strings"
)

// 與每次 chat completion 一起送出的 system 訊息
const (
	RandomIngredientsSystemPrompt = "You are a skilled bartender. Respond only with ingredients list."
	RecipeSystemPrompt            = "You are a skilled bartender. Always respond with valid JSON only. For instructions, do not include numbers at the start of each step - they will be automatically numbered when displayed."
)

// DrinkType 提示詞中使用的飲品類型
func DrinkType(isMocktail bool) string {
	if isMocktail {
		return "mocktail (non-alcoholic cocktail)"
	}
	return "cocktail"
}

// BuildRandomIngredientsPrompt 要求模型隨機列出 2-4 種材料
func BuildRandomIngredientsPrompt(isMocktail bool) string {
	constraint := "Include at least one base spirit (like vodka, gin, rum, etc.) and complementary mixers, liqueurs, or other ingredients."
	if isMocktail {
		constraint = "Only include non-alcoholic ingredients like juices, syrups, sodas, herbs, spices, etc."
	}

	return fmt.Sprintf(`You are a skilled bartender. Generate a list of 2-4 ingredients that would work well together in a %s.

%s

Respond with ONLY the ingredients as a comma-separated list, with no additional text or explanation. For example:
gin, lime juice, elderflower syrup, mint leaves`, DrinkType(isMocktail), constraint)
}

// BuildRecipePrompt 依偏好組出酒譜提示詞，要求嚴格的 JSON 輸出
func BuildRecipePrompt(ingredients string, sweetness, strength int, isMocktail bool, notes string) string {
	drinkType := DrinkType(isMocktail)

	if strings.TrimSpace(notes) == "" {
		notes = "None"
	}

	var levels strings.Builder
	fmt.Fprintf(&levels, "- Sweetness level: %d/100\n", sweetness)
	if !isMocktail {
		fmt.Fprintf(&levels, "- Strength level: %d/100\n", strength)
	}
	fmt.Fprintf(&levels, "- Additional notes: %s", notes)

	return fmt.Sprintf(`You are a skilled bartender. Create a unique %[1]s recipe based on these ingredients: %[2]s.
The drink should have:
%[3]s

You must respond with ONLY a valid JSON object in this exact format, with no additional text or explanation. For instructions, do not include numbers at the start - they will be automatically numbered when displayed:
{
  "name": "%[1]s name",
  "description": "Brief backstory or description",
  "ingredients": ["List", "of", "ingredients"],
  "instructions": ["In a shaker, muddle mint leaves", "Add vodka and juice", "etc"],
  "garnish": "Garnish details",
  "glassware": "Recommended glass",
  "tips": ["Preparation tip 1", "Tip 2"],
  "substitutions": ["Possible substitution 1", "Substitution 2"]
}`, drinkType, ingredients, levels.String())
}

// BuildImagePrompt 產生飲品攝影風格的圖片提示詞
func BuildImagePrompt(name, description string, isMocktail bool) string {
	return fmt.Sprintf(`A professional, appetizing photograph of a %s called "%s". %s. The image should be well-lit, showing the drink in an appropriate glass with garnishes, photographed in a high-end bar or restaurant setting. Professional food photography style, high resolution, detailed.`,
		DrinkType(isMocktail), name, strings.TrimRight(description, ". "))
}
