package commands

import (
	"github.com/spf13/cobra"

	"github.com/aquameter-labs/aquameter/internal/importer"
)

// ImportOptions holds options for the import command.
type ImportOptions struct {
	Output string
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Convert a meter export into the usage CSV",
		Long: `Convert a third-party meter CSV into the hourly usage format.

Date, time and usage columns are detected from common header names,
falling back to the first column for dates and the last for usage.
Sub-hourly rows are summed into hourly buckets and gaps filled with
zero usage.`,
		Example: `  # Convert a downloaded dataset into the configured data path
  aquameter import household_water.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Output, "output-file", "", "Destination CSV (default: configured data path)")

	return cmd
}

func runImport(cmd *cobra.Command, inputPath string, opts *ImportOptions) error {
	cfg := GetConfig(cmd.Context())
	r := GetRenderer(cmd.Context())

	outputPath := opts.Output
	if outputPath == "" {
		outputPath = cfg.DataPath
	}

	m, err := importer.Import(inputPath, outputPath)
	if err != nil {
		return err
	}

	if r.JSONMode() {
		return r.JSON(struct {
			Output      string `json:"output"`
			DateColumn  string `json:"date_column"`
			TimeColumn  string `json:"time_column,omitempty"`
			UsageColumn string `json:"usage_column"`
			Rows        int    `json:"rows"`
			Skipped     int    `json:"skipped"`
		}{outputPath, m.DateColumn, m.TimeColumn, m.UsageColumn, m.Rows, m.Skipped})
	}

	r.Info("Column mapping: date=%s time=%s usage=%s", m.DateColumn, orDash(m.TimeColumn), m.UsageColumn)
	if m.Skipped > 0 {
		r.Warning("Skipped %d unparseable rows", m.Skipped)
	}
	r.Success("Wrote %d hourly points to %s", m.Rows, outputPath)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
