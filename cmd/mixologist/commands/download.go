package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cocktail-generator/internal/core/image"
	"cocktail-generator/internal/pkg/common"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a generated image as PNG",
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	flags := downloadCmd.Flags()
	flags.StringP("url", "u", "", "image URL (required)")
	flags.String("out", "cocktail.png", "output file")
	flags.Duration("timeout", 30*time.Second, "download timeout")
	flags.Int64("max-size", 10<<20, "max image size in bytes")

	_ = downloadCmd.MarkFlagRequired("url")
}

func runDownload(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	rawURL, _ := flags.GetString("url")
	out, _ := flags.GetString("out")
	timeout, _ := flags.GetDuration("timeout")
	maxSize, _ := flags.GetInt64("max-size")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := downloadImage(ctx, image.NewService(maxSize, timeout, out), rawURL, out)
	if err != nil {
		_, _, message := common.StatusFromError(err, "Failed to download image")
		return fmt.Errorf("%s: %w", message, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", n, out)
	return nil
}

// downloadImage 透過圖片轉存服務下載並寫入檔案
func downloadImage(ctx context.Context, relay *image.Service, rawURL, out string) (int, error) {
	download, err := relay.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, download.Data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return len(download.Data), nil
}
