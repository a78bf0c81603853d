package backtest

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/indicator"
	"github.com/alejandrodnm/swingdesk/internal/ports"
	"github.com/alejandrodnm/swingdesk/internal/strategy"
)

// relStrengthPeriod es la ventana de la fuerza relativa contra el benchmark.
const relStrengthPeriod = 20

// Analyzer ejecuta el pipeline completo de un stock:
// load → indicadores → señales → retornos → métricas.
type Analyzer struct {
	bars     ports.BarProvider
	registry strategy.Registry
}

// NewAnalyzer crea un Analyzer con el proveedor de bars y el registry dados.
func NewAnalyzer(bars ports.BarProvider, registry strategy.Registry) *Analyzer {
	return &Analyzer{bars: bars, registry: registry}
}

// Analyze hace el backtest de un stock. benchmark puede ser nil.
func (a *Analyzer) Analyze(ctx context.Context, stock domain.Stock, r domain.DateRange, benchmark domain.BarSeries) (domain.StockResult, error) {
	v, err := a.registry.Lookup(stock.Strategy)
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("backtest.Analyze %s: %w", stock.Name, err)
	}

	bars, err := a.bars.LoadBars(ctx, stock, r)
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("backtest.Analyze %s: load bars: %w", stock.Name, err)
	}

	strat, err := strategy.New(v, bars)
	if err != nil {
		return domain.StockResult{}, fmt.Errorf("backtest.Analyze %s: %w", stock.Name, err)
	}
	scan := strat.Run()

	step := strategy.StepReturns(bars, scan.Signals)
	equity := domain.Equity(step)

	res := domain.StockResult{
		Stock:       stock,
		Bars:        len(bars),
		Signals:     scan.Signals,
		Closes:      scan.Closes,
		Trades:      strategy.Trades(scan),
		Returns:     strategy.CalculateReturns(bars, scan.Signals),
		StepReturns: step,
		Equity:      equity,
		Metrics:     domain.ComputeMetrics(equity),
		Indicators:  snapshot(bars),
	}
	if len(bars) > 0 {
		res.From = bars[0].Time
		res.To = bars[len(bars)-1].Time
	}
	if len(benchmark) > 0 {
		res.RelativeStrength = lastDefined(indicator.RelativeStrength(bars, benchmark, relStrengthPeriod))
	}
	return res, nil
}

// snapshot calcula el conjunto estándar de indicadores y devuelve los valores del último bar.
func snapshot(bars domain.BarSeries) map[string]float64 {
	if len(bars) == 0 {
		return nil
	}
	f := indicator.Annotate(indicator.NewFrame(bars), indicator.Standard()...)
	out := make(map[string]float64)
	for name, v := range f.Row(f.Len() - 1) {
		if v.OK {
			out[name] = v.V
		}
	}
	return out
}

func lastDefined(s indicator.Series) *float64 {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].OK {
			v := s[i].V
			return &v
		}
	}
	return nil
}
