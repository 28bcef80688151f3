package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BenjaminSRussell/macwinua"
	"github.com/BenjaminSRussell/macwinua/internal/export"
	"github.com/BenjaminSRussell/macwinua/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputFile string
	inputFile  string
	targetDB   string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Export or import agent tables",
}

var tableExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current agent table to a file",
	Long:  `Write the current agent table to a .json, .yaml or .csv file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ua, err := newGenerator()
		if err != nil {
			return err
		}
		table := ua.Table()

		if strings.EqualFold(filepath.Ext(outputFile), ".csv") {
			if err := writeCSV(outputFile, table); err != nil {
				return err
			}
		} else if err := storage.SaveTable(outputFile, table); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d agents to %s\n", len(table.Agents), outputFile)
		return nil
	},
}

var tableImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate a table file and store it in a SQLite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := storage.LoadTable(inputFile)
		if err != nil {
			return err
		}
		if err := macwinua.ValidateTable(table); err != nil {
			return fmt.Errorf("table %s is invalid: %w", inputFile, err)
		}

		store, err := storage.NewSQLiteStorage(targetDB)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveTable(table); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		stats, err := store.GetStats()
		if err != nil {
			return err
		}
		logger.Debug("table imported", zap.String("db", targetDB), zap.Any("stats", stats))

		fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d agents into %s\n", len(table.Agents), targetDB)
		return nil
	},
}

func init() {
	tableExportCmd.Flags().StringVarP(&outputFile, "output", "o", "agents.yaml", "Output file path (.json, .yaml, .yml or .csv)")

	tableImportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Table file to import (required)")
	tableImportCmd.Flags().StringVar(&targetDB, "to", "macwinua.db", "SQLite database to write")
	tableImportCmd.MarkFlagRequired("input")

	tableCmd.AddCommand(tableExportCmd)
	tableCmd.AddCommand(tableImportCmd)
}

func writeCSV(path string, table macwinua.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := export.WriteAgentsCSV(file, table); err != nil {
		return err
	}
	return file.Close()
}
