package main

import (
	"fmt"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/service"
	"github.com/dafibh/vendas/vendas-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Read or set the monthly sales goal",
	}

	// Add subcommands
	cmd.AddCommand(goalGetCmd())
	cmd.AddCommand(goalSetCmd())

	return cmd
}

func goalGetCmd() *cobra.Command {
	var month, year int
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the goal and progress of a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			month, year = defaultMonth(month, year, s.loc)

			progress, err := service.NewGoalService(s.client()).Progress(cmd.Context(), s.token, month, year)
			if err != nil {
				return fmt.Errorf("failed to load goal: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Meta %02d/%d\n", progress.Goal.Month, progress.Goal.Year)
			if !progress.HasGoal {
				fmt.Fprintln(out, "  sem meta cadastrada")
			}
			fmt.Fprintf(out, "  Vendas:   %s de %s (%s%%)\n",
				progress.SalesActual.StringFixed(2), progress.Goal.SalesTarget.StringFixed(2), progress.SalesProgress.StringFixed(1))
			fmt.Fprintf(out, "  Produtos: %s de %d (%s%%)\n",
				progress.UnitsActual.StringFixed(0), progress.Goal.UnitsTarget, progress.UnitsProgress.StringFixed(1))
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "month (default: current)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")

	return cmd
}

func goalSetCmd() *cobra.Command {
	var (
		month, year int
		salesTarget string
		unitsTarget int
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the goal of a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			target, err := decimal.NewFromString(salesTarget)
			if err != nil {
				return fmt.Errorf("--sales: %w", err)
			}
			month, year = defaultMonth(month, year, s.loc)

			saved, err := service.NewGoalService(s.client()).Upsert(cmd.Context(), s.token, &domain.Goal{
				Month:       month,
				Year:        year,
				SalesTarget: target,
				UnitsTarget: unitsTarget,
			})
			if err != nil {
				return fmt.Errorf("failed to save goal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Meta %02d/%d salva: %s em vendas, %d produtos\n",
				saved.Month, saved.Year, saved.SalesTarget.StringFixed(2), saved.UnitsTarget)
			return nil
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "month (default: current)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")
	cmd.Flags().StringVar(&salesTarget, "sales", "0", "sales revenue target")
	cmd.Flags().IntVar(&unitsTarget, "units", 0, "units sold target")

	return cmd
}

func defaultMonth(month, year int, loc *time.Location) (int, int) {
	curMonth, curYear := util.CurrentMonth(time.Now(), loc)
	if month == 0 {
		month = curMonth
	}
	if year == 0 {
		year = curYear
	}
	return month, year
}
