package main

import (
	"fmt"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	format string
	out    string
}

func exportCmd() *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a report file",
		Long: `Export the dashboard or the sales list as a PDF, XLSX or text report.

The file is named <topic>_<yyyy_mm_dd>.<ext> and written to --out.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "pdf", "report format (pdf, xlsx, txt)")
	cmd.PersistentFlags().StringVarP(&opts.out, "out", "o", ".", "output directory")

	// Add subcommands
	cmd.AddCommand(exportDashboardCmd(opts))
	cmd.AddCommand(exportSalesCmd(opts))

	return cmd
}

func exportDashboardCmd(opts *exportOptions) *cobra.Command {
	var (
		from, to    string
		goals       bool
		month, year int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Export totals, sales and expenses for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			format, err := domain.ParseExportFormat(opts.format)
			if err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			fromDate, err := util.ParseDate(from, s.loc)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDate, err := util.ParseDate(to, s.loc)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			period, err := report.NewPeriod(fromDate, toDate)
			if err != nil {
				return err
			}

			client := s.client()
			goalService := service.NewGoalService(client)
			dashboard := service.NewDashboardService(client, client, goalService, s.loc)
			m, err := dashboard.Report(cmd.Context(), s.token, service.ReportOptions{
				Period:       period,
				IncludeGoals: goals,
				Month:        month,
				Year:         year,
			})
			if err != nil {
				return fmt.Errorf("failed to load dashboard: %w", err)
			}
			return runExport(cmd, s, opts, m, format)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (yyyy-MM-dd or dd/MM/yyyy)")
	cmd.Flags().StringVar(&to, "to", "", "last day (yyyy-MM-dd or dd/MM/yyyy)")
	cmd.Flags().BoolVar(&goals, "goals", false, "include monthly goal progress")
	cmd.Flags().IntVar(&month, "month", 0, "goal month (default: month of --from, or the current month)")
	cmd.Flags().IntVar(&year, "year", 0, "goal year")

	return cmd
}

func exportSalesCmd(opts *exportOptions) *cobra.Command {
	var f saleFilterFlags
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Export the filtered sales list with its items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			format, err := domain.ParseExportFormat(opts.format)
			if err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			filter, err := f.build(s.loc)
			if err != nil {
				return err
			}

			client := s.client()
			m, err := service.NewSaleService(client, client, s.loc).Report(cmd.Context(), s.token, filter)
			if err != nil {
				return fmt.Errorf("failed to load sales: %w", err)
			}
			return runExport(cmd, s, opts, m, format)
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "", "first sale date")
	cmd.Flags().StringVar(&f.to, "to", "", "last sale date")
	cmd.Flags().StringVar(&f.payer, "payer", "", "payer name contains (case-insensitive)")
	cmd.Flags().StringVar(&f.status, "status", "", "sale status (Pendente, Entregue, Acertado)")
	cmd.Flags().StringVar(&f.paymentMethod, "payment-method", "", "exact payment method")
	cmd.Flags().StringVar(&f.min, "min", "", "minimum amount")
	cmd.Flags().StringVar(&f.max, "max", "", "maximum amount")

	return cmd
}

func runExport(cmd *cobra.Command, s *settings, opts *exportOptions, m *report.Model, format domain.ExportFormat) error {
	registry, err := s.registry()
	if err != nil {
		return err
	}
	artifact, err := service.NewExportService(registry, nil).Export(m, format)
	if err != nil {
		return err
	}
	path, err := writeArtifact(opts.out, artifact)
	if err != nil {
		return err
	}

	log.Debug().Str("path", path).Int64("size", artifact.Size()).Msg("Report written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
