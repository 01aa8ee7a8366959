package main

import (
	"fmt"

	"github.com/MarkoPoloResearchLab/cashregister/internal/catalogfile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCatalogCommand(cfg *runtimeConfig) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the item catalog",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Add or reprice every item listed in a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalogfile.Load(args[0])
			if err != nil {
				return err
			}
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			cashRegister, cleanup, err := openCashRegister(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			applied, err := catalogfile.Apply(cmd.Context(), cashRegister.Service, cashRegister.Config.Roles.Manager, entries)
			if err != nil {
				return fmt.Errorf("catalog import stopped after %d of %d items: %w", applied, len(entries), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items\n", applied)
			return nil
		},
	})
	return catalogCmd
}
