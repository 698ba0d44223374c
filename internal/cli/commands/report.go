package commands

import (
	"github.com/spf13/cobra"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Manual bool
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the latest savings analysis",
		Long: `Print the periodic savings analysis.

By default the analysis covers the simulated four-week window. With
--manual it analyzes the recorded manual entries instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Manual, "manual", false, "Analyze manual entries instead of the simulation")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	cfg := GetConfig(cmd.Context())
	r := GetRenderer(cmd.Context())

	eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
	if err != nil {
		return err
	}
	defer cleanup()

	var lines []string
	if opts.Manual {
		lines, err = eng.ManualRecommendations()
	} else {
		lines, err = eng.Recommendations()
	}
	if err != nil {
		return err
	}

	if r.JSONMode() {
		return r.JSON(map[string][]string{"recommendations": lines})
	}

	if len(lines) > 0 {
		r.Title("%s", lines[0])
		r.Lines(lines[1:])
	}
	return nil
}
