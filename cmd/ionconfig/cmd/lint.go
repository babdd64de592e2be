package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Compile-check a configuration source",
	Long: `Compiles the configuration source and reports each namespace with its
top-level rule count. Exits non-zero on any construction error.`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, err := loadManager(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	for _, namespace := range manager.Namespaces() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules\n", namespace, manager.RuleCount(namespace))
	}
	return nil
}
