package domain

import (
	"sort"
	"time"
)

// StockResult es el resultado completo del backtest de un stock.
type StockResult struct {
	Stock       Stock
	Bars        int
	From, To    time.Time
	Signals     []TradeSignal
	Closes      []PositionClosed
	Trades      []Trade
	Returns     ReturnSeries // retorno de la posición respecto al precio de entrada
	StepReturns ReturnSeries // retorno bar a bar dentro de las mismas ventanas
	Equity      ReturnSeries
	Metrics     Metrics

	// Indicators son los valores del último bar del conjunto estándar de indicadores;
	// los no disponibles se omiten.
	Indicators map[string]float64
	// RelativeStrength es el último valor de fuerza relativa contra el benchmark
	// (fraccional). nil si no hay benchmark o no hay datos suficientes.
	RelativeStrength *float64
}

// PortfolioResult combina varios stocks con peso igual.
type PortfolioResult struct {
	Stocks  []StockResult
	Step    ReturnSeries
	Equity  ReturnSeries
	Metrics Metrics
}

// Run es una ejecución persistida del backtest.
type Run struct {
	ID        string
	StartedAt time.Time
	Range     DateRange
	Results   []StockResult
	Portfolio *PortfolioResult
}

// CombinePortfolio combina retornos bar a bar con peso igual (1/N por stock).
// El índice resultante es el del primer stock en orden; los bars que falten en
// otro stock contribuyen 0.
func CombinePortfolio(order []string, steps map[string]ReturnSeries) ReturnSeries {
	if len(order) == 0 {
		return ReturnSeries{}
	}
	base, ok := steps[order[0]]
	if !ok {
		return ReturnSeries{}
	}
	out := NewReturnSeries(base.Index)
	weight := 1 / float64(len(order))
	for _, name := range order {
		s, ok := steps[name]
		if !ok {
			continue
		}
		for i, t := range out.Index {
			if v, found := s.At(t); found {
				out.Values[i] += v * weight
			}
		}
	}
	return out
}

// BuildPortfolio calcula el portfolio equal-weight a partir de resultados por stock.
func BuildPortfolio(results []StockResult) PortfolioResult {
	order := make([]string, 0, len(results))
	steps := make(map[string]ReturnSeries, len(results))
	for _, r := range results {
		order = append(order, r.Stock.Name)
		steps[r.Stock.Name] = r.StepReturns
	}
	step := CombinePortfolio(order, steps)
	equity := Equity(step)
	return PortfolioResult{
		Stocks:  results,
		Step:    step,
		Equity:  equity,
		Metrics: ComputeMetrics(equity),
	}
}

// SortResults ordena los resultados según el orden de configuración de los stocks.
func SortResults(results []StockResult, order []Stock) {
	pos := make(map[string]int, len(order))
	for i, s := range order {
		pos[s.Name] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return pos[results[i].Stock.Name] < pos[results[j].Stock.Name]
	})
}
