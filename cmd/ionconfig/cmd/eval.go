package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amzn/ion-cascading-config/ionconfig"
	"github.com/amzn/ion-cascading-config/sqlsource"
)

var evalNamespace string

var evalCmd = &cobra.Command{
	Use:   "eval [key=value ...]",
	Short: "Evaluate a namespace against criterion values",
	Long: `Compiles the configuration source and evaluates one namespace with the
given criterion values, printing every resulting field as Ion text.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalNamespace, "namespace", "", "namespace to evaluate")
}

func runEval(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	namespace := cfg.Namespace
	if evalNamespace != "" {
		namespace = evalNamespace
	}
	if namespace == "" {
		return fmt.Errorf("--namespace required")
	}

	properties := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid property %q (expected key=value)", arg)
		}
		properties[key] = value
	}

	manager, err := loadManager(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	values := manager.ValuesForProperties(namespace, properties)
	logger.Debug("evaluated namespace",
		zap.String("namespace", namespace),
		zap.Int("criteria", len(properties)),
		zap.Int("values", len(values)))

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, values[key])
	}
	return nil
}

// loadManager compiles a manager from the configured source: a database when
// a URL is set, a directory of .ion files otherwise.
func loadManager(ctx context.Context, cfg *Config, logger *zap.Logger) (*ionconfig.Manager, error) {
	if cfg.DBURL != "" {
		db, err := sqlsource.Open(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		store, err := sqlsource.NewStore(db, logger)
		if err != nil {
			return nil, err
		}
		manager, err := store.Manager(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compile config from database: %w", err)
		}
		logger.Info("compiled configuration",
			zap.String("source", cfg.DBURL),
			zap.Strings("namespaces", manager.Namespaces()))
		return manager, nil
	}

	manager, err := ionconfig.FromDirectory(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to compile config from %s: %w", cfg.Dir, err)
	}
	logger.Info("compiled configuration",
		zap.String("source", cfg.Dir),
		zap.Strings("namespaces", manager.Namespaces()))
	return manager, nil
}
