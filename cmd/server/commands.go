package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the ledger schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd.Context(), g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer ledger.Close()

			v, err := ledger.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, ledger.Dialect().Name)
			return nil
		},
	}
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number of persisted generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := openLedger(cmd.Context(), g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer ledger.Close()

			o := ledger.TotalGenerations(cmd.Context(), g.cfg.Service.Name)
			if o.Err != nil {
				return o.Err
			}
			total := o.Value
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d generations\n", g.cfg.Service.Name, total)
			return nil
		},
	}
}
