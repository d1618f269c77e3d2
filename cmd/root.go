package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qrave1/GiftRoulette/internal/application/config"
)

var rootCmd = &cobra.Command{
	Use:   "roulette",
	Short: "Gift roulette backend: room storage and operator reset endpoint.",
	// ошибки печатает Execute, usage при ошибке выполнения не нужен
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		runApp()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: cfg.LogLevel()},
			),
		),
	)
}
