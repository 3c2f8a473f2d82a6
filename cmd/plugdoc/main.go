package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"plugdoc/internal/config"
	"plugdoc/internal/nvim"
	"plugdoc/internal/pipeline"
	"plugdoc/internal/ui"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plugdoc",
	Short: "Regenerate a Neovim plugin's README sections and help file from its source",
	Long: `plugdoc runs in the plugin's root directory. It rewrites the API, Commands
and TOC regions of README.md and regenerates doc/<module>.txt.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(root, "")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client := nvim.NewClient(nvim.Options{
		Binary:        cfg.Nvim.Binary,
		ListenAddress: cfg.Nvim.ListenAddress,
		Root:          cfg.Project.Root,
	})
	defer client.Close()

	return pipeline.NewDocSync(cfg, client).Run(ctx)
}
