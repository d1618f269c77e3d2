package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qrave1/GiftRoulette/internal/application/config"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/GiftRoulette/internal/usecase"
)

var resetRoomID string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a room to its initial state without going through HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("parse config: %w", err)
		}

		setupLogger(cfg)

		roomID := resetRoomID
		if roomID == "" {
			roomID = cfg.DefaultRoomID
		}

		db, err := postgres.NewPostgres(cmd.Context(), cfg.Postgres.DSN())
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer db.Close()

		res, err := usecase.NewRoomUsecase(repository.NewRoomRepo(db)).ResetRoom(cmd.Context(), roomID)
		if err != nil {
			return fmt.Errorf("an unexpected error occurred: %w", err)
		}

		if !res.Success {
			return errors.New("failed to reset room: " + res.Error)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Room %s reset successfully!\n", roomID)

		return nil
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetRoomID, "room", "", "room id (defaults to DEFAULT_ROOM_ID)")

	rootCmd.AddCommand(resetCmd)
}
