// Package commands 實作 mixologist 命令列工具
package commands

import (
	"cocktail-generator/internal/pkg/common"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mixologist",
	Short: "Generate cocktail recipes from the command line",
	Long: `Mixologist 使用與 API 相同的流程產生調酒酒譜與圖片。

Examples:
  # 依現有材料產生酒譜
  mixologist generate --ingredients "gin, lime, soda" --sweetness 40 --strength 60

  # 隨機產生無酒精飲品並以 YAML 輸出
  mixologist generate --random --mocktail --output yaml

  # 下載酒譜圖片
  mixologist download --url "https://example.com/image.webp" --out cocktail.png`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug {
			return nil
		}
		return common.InitLogger("debug", "")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		common.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// Execute 執行根命令
func Execute() error {
	return rootCmd.Execute()
}
