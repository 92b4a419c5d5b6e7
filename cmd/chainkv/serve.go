package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/chainkv/pkg/metrics"
	"github.com/cuemby/chainkv/pkg/statsserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health/metrics/debug HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		db, err := connectFromFlags(cmd)
		if err != nil {
			return err
		}

		metrics.SetVersion(Version)
		server := statsserver.New(db)

		fmt.Printf("chainkv stats server listening on %s\n", addr)
		fmt.Printf("  - Health:  http://%s/healthz\n", addr)
		fmt.Printf("  - Ready:   http://%s/readyz\n", addr)
		fmt.Printf("  - Metrics: http://%s/metrics\n", addr)
		fmt.Printf("  - Debug:   http://%s/debug/store\n", addr)

		return server.Start(addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:9090", "Listen address")
}
