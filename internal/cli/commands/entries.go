package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aquameter-labs/aquameter/internal/store"
	"github.com/aquameter-labs/aquameter/internal/tariff"
)

// NewEntriesCommand creates the entries command group.
func NewEntriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage manual meter entries",
		Long: `Record, list and remove manual meter or bill readings.

Manual entries feed the manual usage analysis alongside the simulated
stream: daily totals with an optional night-tariff share, one entry
per date.`,
	}

	cmd.AddCommand(newEntriesListCommand())
	cmd.AddCommand(newEntriesAddCommand())
	cmd.AddCommand(newEntriesRemoveCommand())

	return cmd
}

func newEntriesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded manual entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			r := GetRenderer(cmd.Context())

			eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer cleanup()

			byDate, err := eng.ManualEntries()
			if err != nil {
				return err
			}

			entries := make([]store.ManualEntry, 0, len(byDate))
			for _, e := range byDate {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })

			if r.JSONMode() {
				return r.JSON(entries)
			}
			if len(entries) == 0 {
				r.Info("No manual entries recorded yet.")
				return nil
			}

			pricing := tariff.Default()
			p := message.NewPrinter(language.English)

			t := table.NewWriter()
			t.SetOutputMirror(r.Out())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Date", "Total (L)", "Night (L)", "Cost"})

			var totalUsage, totalCost float64
			for _, e := range entries {
				cost := pricing.EntryCost(e.Total, e.Night)
				totalUsage += e.Total
				totalCost += cost
				t.AppendRow(table.Row{
					e.Date,
					p.Sprintf("%.1f", e.Total),
					p.Sprintf("%.1f", e.Night),
					p.Sprintf("%.2f", cost),
				})
			}
			t.AppendFooter(table.Row{"Total", p.Sprintf("%.1f", totalUsage), "", p.Sprintf("%.2f", totalCost)})
			t.Render()

			return nil
		},
	}
}

func newEntriesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <date> <total-liters> [night-liters]",
		Short: "Record a manual entry",
		Example: `  # 250 L on March 10th, 40 L of it at night tariff
  aquameter entries add 2026-03-10 250 40`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			r := GetRenderer(cmd.Context())

			total, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid total %q", args[1])
			}
			var night float64
			if len(args) == 3 {
				night, err = strconv.ParseFloat(args[2], 64)
				if err != nil {
					return fmt.Errorf("invalid night amount %q", args[2])
				}
			}

			eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.AddManualEntry(args[0], total, night); err != nil {
				return err
			}
			r.Success("Recorded %s: %.1f L (%.1f L night)", args[0], total, night)
			return nil
		},
	}
}

func newEntriesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>",
		Short: "Remove a manual entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			r := GetRenderer(cmd.Context())

			eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer cleanup()

			found, err := eng.DeleteManualEntry(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no entry recorded for %s", args[0])
			}
			r.Success("Removed entry for %s", args[0])
			return nil
		},
	}
}
