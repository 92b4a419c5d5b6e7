package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/chainkv/pkg/config"
	"github.com/cuemby/chainkv/pkg/database"
)

func connectFromFlags(cmd *cobra.Command) (*database.Database, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	cfg := config.New(config.WithPath(dataDir))
	db, err := database.Connect(*cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %q: %w", dataDir, err)
	}
	return db, nil
}
