package cocktail

// Preferences 使用者的調酒偏好
type Preferences struct {
	Ingredients string
	Sweetness   *int
	Strength    *int
	Notes       string
	IsMocktail  bool
	Random      bool
}

// Recipe 模型產生的酒譜
type Recipe struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Ingredients   []string `json:"ingredients" yaml:"ingredients"`
	Instructions  []string `json:"instructions" yaml:"instructions"`
	Garnish       string   `json:"garnish" yaml:"garnish"`
	Glassware     string   `json:"glassware" yaml:"glassware"`
	Tips          []string `json:"tips" yaml:"tips"`
	Substitutions []string `json:"substitutions" yaml:"substitutions"`
}

// GeneratedValues 隨機模式下由伺服器決定的值
type GeneratedValues struct {
	Ingredients string `json:"ingredients" yaml:"ingredients"`
	Sweetness   int    `json:"sweetness" yaml:"sweetness"`
	Strength    int    `json:"strength" yaml:"strength"`
}

// Result 回傳給用戶端的結果，酒譜欄位攤平在最上層
type Result struct {
	Recipe          `yaml:",inline"`
	ImageURL        string           `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	GeneratedValues *GeneratedValues `json:"generatedValues,omitempty" yaml:"generatedValues,omitempty"`
}
