package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/report"
	reportsvc "github.com/jwalitptl/walkin-api/internal/service/report"
)

// cliSession is the operator running a command with access to the config.
var cliSession = &model.StaffSession{User: "cli"}

func reportCmd(configPath *string) *cobra.Command {
	var department, month, year string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the department statistics table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := report.ParseReportFilter(department, month, year)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := reportsvc.NewService(a.store, a.metrics, a.log.With("reports").Zerolog())
			rows, err := svc.Stats(cmd.Context(), cliSession, filter)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			return report.WriteCSV(cmd.OutOrStdout(), report.StatsTable(rows))
		},
	}
	cmd.Flags().StringVar(&department, "department", "all", `department name, "all" or "other"`)
	cmd.Flags().StringVar(&month, "month", "all", `month 1-12 or "all"`)
	cmd.Flags().StringVar(&year, "year", "", "four-digit year (default: every year)")
	return cmd
}
