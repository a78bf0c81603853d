package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// NoSignalsMessage se imprime cuando un stock no genera señales en el rango.
const NoSignalsMessage = "No signals generated for the selected period."

const dateLayout = "2006-01-02 15:04"

// Console implementa ports.Reporter.
type Console struct {
	out    io.Writer
	trades bool
}

// NewConsole crea un reporter que escribe a stdout. trades activa la tabla de
// trades cerrados además de la de señales.
func NewConsole(trades bool) *Console {
	return &Console{out: os.Stdout, trades: trades}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, trades: true}
}

// Report imprime, por stock, la cabecera, las métricas y las señales.
func (c *Console) Report(_ context.Context, results []domain.StockResult) error {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "no results")
		return nil
	}
	for _, r := range results {
		c.printHeader(r)
		c.printMetrics(r.Metrics)
		if len(r.Signals) == 0 {
			fmt.Fprintln(c.out, NoSignalsMessage)
			continue
		}
		c.printSignals(r.Signals)
		if c.trades && len(r.Trades) > 0 {
			c.printTrades(r.Trades)
		}
	}
	return nil
}

// ReportPortfolio imprime las métricas del portfolio y la comparación por stock.
func (c *Console) ReportPortfolio(_ context.Context, p domain.PortfolioResult) error {
	fmt.Fprintf(c.out, "\nPortfolio Performance Metrics (%d stocks, equal weight)\n", len(p.Stocks))
	c.printMetrics(p.Metrics)

	if len(p.Stocks) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Stock", "Strategy", "Signals", "Total Return", "Sharpe", "Max DD", "Win Rate")
	for _, r := range p.Stocks {
		table.Append(
			r.Stock.Name,
			r.Stock.Strategy,
			fmt.Sprintf("%d", len(r.Signals)),
			pct(r.Metrics.TotalReturnPct),
			fmt.Sprintf("%.2f", r.Metrics.SharpeRatio),
			pct(r.Metrics.MaxDrawdownPct),
			pct(r.Metrics.WinRatePct),
		)
	}
	table.Render()
	return nil
}

// ReportHistory imprime un resumen de ejecuciones persistidas.
func (c *Console) ReportHistory(_ context.Context, runs []domain.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no stored runs in range")
		return nil
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Started", "Range", "Stocks", "Signals", "Portfolio Return")
	for _, run := range runs {
		signals := 0
		for _, r := range run.Results {
			signals += len(r.Signals)
		}
		portfolio := "-"
		if run.Portfolio != nil {
			portfolio = pct(run.Portfolio.Metrics.TotalReturnPct)
		}
		table.Append(
			shortID(run.ID),
			run.StartedAt.Local().Format(dateLayout),
			rangeLabel(run.Range),
			fmt.Sprintf("%d", len(run.Results)),
			fmt.Sprintf("%d", signals),
			portfolio,
		)
	}
	table.Render()
	return nil
}

func (c *Console) printHeader(r domain.StockResult) {
	fmt.Fprintf(c.out, "\n%s [%s] %d bars", r.Stock.Name, r.Stock.Strategy, r.Bars)
	if !r.From.IsZero() {
		fmt.Fprintf(c.out, " %s → %s", r.From.Format(dateLayout), r.To.Format(dateLayout))
	}
	fmt.Fprintln(c.out)
	if r.RelativeStrength != nil {
		fmt.Fprintf(c.out, "Relative Strength: %s\n", pct(*r.RelativeStrength*100))
	}
	if len(r.Indicators) > 0 {
		names := make([]string, 0, len(r.Indicators))
		for name := range r.Indicators {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%.2f", name, r.Indicators[name]))
		}
		fmt.Fprintf(c.out, "Last bar: %s\n", strings.Join(parts, " "))
	}
}

func (c *Console) printMetrics(m domain.Metrics) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	table.Append("Total Return (%)", fmt.Sprintf("%.2f", m.TotalReturnPct))
	table.Append("Annualized Return (%)", fmt.Sprintf("%.2f", m.AnnualizedReturnPct))
	table.Append("Sharpe Ratio", fmt.Sprintf("%.2f", m.SharpeRatio))
	table.Append("Max Drawdown (%)", fmt.Sprintf("%.2f", m.MaxDrawdownPct))
	table.Append("Win Rate (%)", fmt.Sprintf("%.2f", m.WinRatePct))
	table.Append("Average Win (%)", fmt.Sprintf("%.2f", m.AvgWinPct))
	table.Append("Average Loss (%)", fmt.Sprintf("%.2f", m.AvgLossPct))
	table.Append("Profit Factor", fmt.Sprintf("%.2f", m.ProfitFactor))
	table.Render()
}

func (c *Console) printSignals(signals []domain.TradeSignal) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Type", "Price", "Stop Loss", "Take Profit", "Reason")
	for _, s := range signals {
		table.Append(
			s.Timestamp.Format(dateLayout),
			string(s.Type),
			fmt.Sprintf("%.2f", s.Price),
			fmt.Sprintf("%.2f", s.StopLoss),
			fmt.Sprintf("%.2f", s.TakeProfit),
			s.Reason,
		)
	}
	table.Render()
}

func (c *Console) printTrades(trades []domain.Trade) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Entry", "Exit", "Entry Px", "Exit Px", "Return", "Days", "Exit Reason")
	for _, t := range trades {
		table.Append(
			t.Entry.Timestamp.Format(dateLayout),
			t.Exit.Timestamp.Format(dateLayout),
			fmt.Sprintf("%.2f", t.Entry.Price),
			fmt.Sprintf("%.2f", t.Exit.Price),
			pct(t.Return()*100),
			fmt.Sprintf("%d", t.HoldingDays()),
			t.Exit.Reason,
		)
	}
	table.Render()
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func rangeLabel(r domain.DateRange) string {
	start, end := "…", "…"
	if !r.Start.IsZero() {
		start = r.Start.Format("2006-01-02")
	}
	if !r.End.IsZero() {
		end = r.End.Format("2006-01-02")
	}
	return start + " → " + end
}
