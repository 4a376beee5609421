package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/usecase/ingest"
)

var removeCmd = &cobra.Command{
	Use:   "remove PID...",
	Short: "Delete the face and text vectors of the given PIDs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		store, err := openStore(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := ingest.New(newSpaceRepo(store, cfg.Spaces), nil, nil, logger)
		for _, pid := range args {
			if err := svc.Remove(ctx, pid); err != nil {
				return fmt.Errorf("remove: %w", err)
			}
			logger.Info("Vectors removed", zap.String("pid", pid))
		}
		return nil
	},
}
