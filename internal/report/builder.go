package report

import (
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Report topics, used as filename prefixes
const (
	TopicDashboard = "dashboard"
	TopicSales     = "vendas"
)

// Summary groups
const (
	GroupSummary = "Resumo"
	GroupGoals   = "Metas"
)

// Summary labels
const (
	LabelTotalSales    = "Total de Vendas"
	LabelTotalExpenses = "Total de Despesas"
	LabelBalance       = "Saldo"
	LabelSalesTarget   = "Meta de Vendas"
	LabelSalesActual   = "Vendas no Mês"
	LabelSalesProgress = "Progresso Vendas"
	LabelUnitsTarget   = "Meta de Produtos"
	LabelUnitsActual   = "Produtos no Mês"
	LabelUnitsProgress = "Progresso Produtos"
	LabelOpenSubtotal  = "Subtotal (Pendente/Entregue)"
	LabelSalesCount    = "Quantidade de Vendas"
	LabelUnitsSold     = "Produtos Vendidos"
	HeadingSales       = "Vendas"
	HeadingExpenses    = "Despesas"
	HeadingItems       = "Itens"
	dashboardTitle     = "Relatório do Dashboard"
	salesTitle         = "Relatório de Vendas"
)

var recordColumns = []Column{
	{Name: "Data", Width: 15},
	{Name: "Descrição", Width: 30},
	{Name: "Valor", Width: 15},
}

// DashboardConfig is the input of BuildDashboard. Sales and Expenses are the
// unfiltered snapshots; the period is applied here.
type DashboardConfig struct {
	Period       Period
	Sales        []domain.Sale
	Expenses     []domain.Expense
	Goal         *domain.Goal
	MonthlySales []domain.MonthlyTotal
	MonthlyUnits []domain.MonthlyTotal
	Now          time.Time
}

// GoalFigures holds the goal block of the dashboard
type GoalFigures struct {
	SalesTarget   decimal.Decimal
	SalesActual   decimal.Decimal
	SalesProgress decimal.Decimal
	UnitsTarget   decimal.Decimal
	UnitsActual   decimal.Decimal
	UnitsProgress decimal.Decimal
}

// ComputeGoalFigures resolves the current element of both monthly series and the progress against goal
func ComputeGoalFigures(goal domain.Goal, monthlySales, monthlyUnits []domain.MonthlyTotal) GoalFigures {
	salesActual := domain.CurrentTotal(monthlySales, goal.Month, goal.Year)
	unitsActual := domain.CurrentTotal(monthlyUnits, goal.Month, goal.Year)
	unitsTarget := decimal.NewFromInt(int64(goal.UnitsTarget))
	return GoalFigures{
		SalesTarget:   goal.SalesTarget,
		SalesActual:   salesActual,
		SalesProgress: Progress(salesActual, goal.SalesTarget),
		UnitsTarget:   unitsTarget,
		UnitsActual:   unitsActual,
		UnitsProgress: Progress(unitsActual, unitsTarget),
	}
}

// BuildDashboard assembles the dashboard report
func BuildDashboard(cfg DashboardConfig) *Model {
	sales, skippedSales := FilterByPeriod(cfg.Sales, cfg.Period)
	expenses, skippedExpenses := FilterByPeriod(cfg.Expenses, cfg.Period)

	totalSales := Sum(sales, domain.Sale.RecordAmount)
	totalExpenses := Sum(expenses, domain.Expense.RecordAmount)

	m := &Model{
		Topic:          TopicDashboard,
		Title:          dashboardTitle,
		GeneratedAt:    generatedAt(cfg.Now),
		PeriodLabel:    cfg.Period.Label(),
		SkippedRecords: skippedSales + skippedExpenses,
	}

	m.Summary = append(m.Summary,
		SummaryRow{Group: GroupSummary, Label: LabelTotalSales, Value: MoneyCell(totalSales)},
		SummaryRow{Group: GroupSummary, Label: LabelTotalExpenses, Value: MoneyCell(totalExpenses)},
		SummaryRow{Group: GroupSummary, Label: LabelBalance, Value: MoneyCell(Balance(totalSales, totalExpenses))},
	)

	if cfg.Goal != nil {
		g := ComputeGoalFigures(*cfg.Goal, cfg.MonthlySales, cfg.MonthlyUnits)
		m.Summary = append(m.Summary,
			SummaryRow{Group: GroupGoals, Label: LabelSalesTarget, Value: MoneyCell(g.SalesTarget)},
			SummaryRow{Group: GroupGoals, Label: LabelSalesActual, Value: MoneyCell(g.SalesActual)},
			SummaryRow{Group: GroupGoals, Label: LabelSalesProgress, Value: PercentCell(g.SalesProgress)},
			SummaryRow{Group: GroupGoals, Label: LabelUnitsTarget, Value: IntegerCell(g.UnitsTarget)},
			SummaryRow{Group: GroupGoals, Label: LabelUnitsActual, Value: IntegerCell(g.UnitsActual)},
			SummaryRow{Group: GroupGoals, Label: LabelUnitsProgress, Value: PercentCell(g.UnitsProgress)},
		)
	}

	m.Sections = append(m.Sections,
		recordSection(HeadingSales, sales),
		recordSection(HeadingExpenses, expenses),
	)
	return m
}

type describedRecord interface {
	Dated
	RecordAmount() decimal.Decimal
	RecordDescription() string
}

func recordSection[T describedRecord](heading string, records []T) Section {
	rows := make([][]Cell, 0, len(records))
	for _, r := range records {
		rows = append(rows, []Cell{
			DateCell(r.RecordDate()),
			TextCell(r.RecordDescription()),
			MoneyCell(r.RecordAmount()),
		})
	}
	return Section{
		Heading: heading,
		Columns: append([]Column(nil), recordColumns...),
		Rows:    rows,
	}
}

// SalesConfig is the input of BuildSales. Sales is the unfiltered snapshot.
type SalesConfig struct {
	Filter   *domain.SaleFilter
	Sales    []domain.Sale
	Products []domain.Product
	Now      time.Time
}

// SalesTotals are the figures shown under the sales table
type SalesTotals struct {
	Total        decimal.Decimal
	OpenSubtotal decimal.Decimal
	Count        int
	Units        int
}

// ComputeSalesTotals sums all sales and the ones still pending or delivered
func ComputeSalesTotals(sales []domain.Sale) SalesTotals {
	return SalesTotals{
		Total: Sum(sales, domain.Sale.RecordAmount),
		OpenSubtotal: SumWhere(sales, domain.Sale.RecordAmount, func(s domain.Sale) bool {
			return s.Status.IsOpen()
		}),
		Count: len(sales),
		Units: SumUnits(sales),
	}
}

// BuildSales assembles the sales report with its applied filters and line items
func BuildSales(cfg SalesConfig) *Model {
	sales, skipped := FilterSales(cfg.Sales, cfg.Filter)
	totals := ComputeSalesTotals(sales)

	m := &Model{
		Topic:          TopicSales,
		Title:          salesTitle,
		GeneratedAt:    generatedAt(cfg.Now),
		Filters:        filterFields(cfg.Filter),
		SkippedRecords: skipped,
	}
	if cfg.Filter != nil {
		m.PeriodLabel = Period{From: cfg.Filter.DateFrom, To: cfg.Filter.DateTo}.Label()
	}

	m.Summary = []SummaryRow{
		{Group: GroupSummary, Label: LabelTotalSales, Value: MoneyCell(totals.Total)},
		{Group: GroupSummary, Label: LabelOpenSubtotal, Value: MoneyCell(totals.OpenSubtotal)},
		{Group: GroupSummary, Label: LabelSalesCount, Value: IntegerCell(decimal.NewFromInt(int64(totals.Count)))},
		{Group: GroupSummary, Label: LabelUnitsSold, Value: IntegerCell(decimal.NewFromInt(int64(totals.Units)))},
	}

	products := domain.ProductIndex(cfg.Products)
	saleRows := make([][]Cell, 0, len(sales))
	var itemRows [][]Cell
	for _, s := range sales {
		status := s.Status
		if status == "" {
			status = domain.SaleStatusPending
		}
		saleRows = append(saleRows, []Cell{
			DateCell(s.Date),
			TextCell(s.Payer),
			MoneyCell(s.Amount),
			TextCell(string(s.PaymentMethod)),
			TextCell(string(status)),
			TextCell(s.Notes),
		})
		for _, item := range s.Items {
			name := item.ProductID
			if p, ok := products[item.ProductID]; ok {
				name = p.Name
			}
			itemRows = append(itemRows, []Cell{
				DateCell(s.Date),
				TextCell(s.Payer),
				TextCell(name),
				IntegerCell(decimal.NewFromInt(int64(item.Quantity))),
				MoneyCell(item.UnitPrice),
				MoneyCell(item.Subtotal()),
			})
		}
	}

	m.Sections = []Section{
		{
			Heading: HeadingSales,
			Columns: []Column{
				{Name: "Data", Width: 15},
				{Name: "Entregador", Width: 20},
				{Name: "Valor", Width: 15},
				{Name: "Forma de Pagamento", Width: 20},
				{Name: "Status", Width: 15},
				{Name: "Descrição", Width: 30},
			},
			Rows: saleRows,
		},
		{
			Heading: HeadingItems,
			Columns: []Column{
				{Name: "Data da Venda", Width: 15},
				{Name: "Entregador", Width: 20},
				{Name: "Produto", Width: 30},
				{Name: "Quantidade", Width: 12},
				{Name: "Preço Unitário", Width: 15},
				{Name: "Subtotal", Width: 15},
			},
			Rows: itemRows,
		},
	}
	return m
}

func filterFields(f *domain.SaleFilter) []Field {
	if f == nil {
		return nil
	}
	var fields []Field
	if f.PayerContains != "" {
		fields = append(fields, Field{Label: "Entregador", Value: f.PayerContains})
	}
	if f.PaymentMethod != "" {
		fields = append(fields, Field{Label: "Forma de Pagamento", Value: string(f.PaymentMethod)})
	}
	if f.Status != "" {
		fields = append(fields, Field{Label: "Status", Value: string(f.Status)})
	}
	if f.DateFrom != nil {
		fields = append(fields, Field{Label: "Data Inicial", Value: FormatDate(*f.DateFrom)})
	}
	if f.DateTo != nil {
		fields = append(fields, Field{Label: "Data Final", Value: FormatDate(*f.DateTo)})
	}
	if f.MinAmount != nil {
		fields = append(fields, Field{Label: "Valor Mínimo", Value: FormatCurrency(*f.MinAmount)})
	}
	if f.MaxAmount != nil {
		fields = append(fields, Field{Label: "Valor Máximo", Value: FormatCurrency(*f.MaxAmount)})
	}
	return fields
}

func generatedAt(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now()
	}
	return now
}
