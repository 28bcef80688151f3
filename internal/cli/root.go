package cli

import (
	"fmt"

	"github.com/BenjaminSRussell/macwinua"
	"github.com/BenjaminSRussell/macwinua/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose   bool
	tableFile string
	dbPath    string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "macwinua",
	Short: "Generate realistic Chrome headers for macOS and Windows",
	Long:  `macwinua - prints User-Agent and sec-ch-ua client hint headers that match a real Chrome release on macOS or Windows`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&tableFile, "table", "", "Load the agent table from a JSON or YAML file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Load the agent table from a SQLite database")

	rootCmd.AddCommand(headersCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(tableCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// newGenerator builds a ChromeUA, swapping in a table from --table or --db when given
func newGenerator() (*macwinua.ChromeUA, error) {
	ua := macwinua.New(macwinua.WithLogger(logger))

	if tableFile != "" {
		table, err := storage.LoadTable(tableFile)
		if err != nil {
			return nil, err
		}
		if err := ua.Update(table); err != nil {
			return nil, fmt.Errorf("failed to apply table %s: %w", tableFile, err)
		}
		logger.Debug("loaded table file", zap.String("path", tableFile), zap.Int("agents", len(table.Agents)))
	}

	if dbPath != "" {
		store, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		table, err := store.LoadTable()
		if err != nil {
			return nil, err
		}
		if err := ua.Update(table); err != nil {
			return nil, fmt.Errorf("failed to apply table from %s: %w", dbPath, err)
		}
		logger.Debug("loaded table database", zap.String("path", dbPath), zap.Int("agents", len(table.Agents)))
	}

	return ua, nil
}
