package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"cocktail-generator/internal/bootstrap"
	"cocktail-generator/internal/core/cocktail"
	"cocktail-generator/internal/infrastructure/config"
	"cocktail-generator/internal/pkg/common"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// 支援的輸出格式
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cocktail recipe and image",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("ingredients", "i", "", "available ingredients, comma separated")
	flags.Int("sweetness", 50, "sweetness level 0-100")
	flags.Int("strength", 50, "strength level 0-100 (ignored for mocktails)")
	flags.StringP("notes", "n", "", "additional notes")
	flags.Bool("mocktail", false, "generate a non-alcoholic drink")
	flags.Bool("random", false, "let the model pick the ingredients and levels")
	flags.StringP("output", "o", formatJSON, "output format: json, yaml")
}

// preferencesFromFlags 由旗標組出偏好，未指定的等級維持 nil
func preferencesFromFlags(cmd *cobra.Command) (cocktail.Preferences, error) {
	flags := cmd.Flags()
	prefs := cocktail.Preferences{}

	var err error
	if prefs.Ingredients, err = flags.GetString("ingredients"); err != nil {
		return prefs, err
	}
	if prefs.Notes, err = flags.GetString("notes"); err != nil {
		return prefs, err
	}
	if prefs.IsMocktail, err = flags.GetBool("mocktail"); err != nil {
		return prefs, err
	}
	if prefs.Random, err = flags.GetBool("random"); err != nil {
		return prefs, err
	}

	// 非隨機模式一律送出等級，隨機模式只送出使用者明確指定的值
	if !prefs.Random || flags.Changed("sweetness") {
		v, err := flags.GetInt("sweetness")
		if err != nil {
			return prefs, err
		}
		prefs.Sweetness = &v
	}
	if !prefs.Random || flags.Changed("strength") {
		v, err := flags.GetInt("strength")
		if err != nil {
			return prefs, err
		}
		prefs.Strength = &v
	}
	return prefs, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(format)
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	prefs, err := preferencesFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	svcs, err := bootstrap.NewServices(cfg)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = common.WithRequestID(ctx, common.GenerateUUID())

	result, err := svcs.Cocktail.Generate(ctx, prefs)
	if err != nil {
		_, _, message := common.StatusFromError(err, "Failed to generate recipe")
		return fmt.Errorf("%s: %w", message, err)
	}

	return writeResult(cmd.OutOrStdout(), result, format)
}

// writeResult 依格式輸出結果
func writeResult(w io.Writer, result *cocktail.Result, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
