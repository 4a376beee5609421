package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/domain/space"
)

var flagRecreate bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the face and text indexes if they do not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		spaces := newSpaceRepo(store, cfg.Spaces)
		for _, sp := range space.All() {
			created := true
			if flagRecreate {
				err = spaces.RecreateIndex(ctx, sp)
			} else {
				created, err = spaces.EnsureIndex(ctx, sp)
			}
			if err != nil {
				return fmt.Errorf("prepare %s index: %w", sp, err)
			}
			logger.Info("Index ready",
				zap.String("space", string(sp)),
				zap.String("index", sp.IndexName()),
				zap.Int("dimensions", spaces.Dimensions()[sp]),
				zap.Bool("created", created),
			)
		}
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&flagRecreate, "recreate", false,
		"drop and rebuild the indexes, e.g. after changing dimensions; stored vectors are kept")
}
