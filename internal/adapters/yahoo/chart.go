package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// ErrNoData se devuelve cuando Yahoo responde sin bars para el símbolo.
var ErrNoData = errors.New("yahoo: no data returned")

// chartResponse es la respuesta de /v8/finance/chart/{symbol}.
// Los valores OHLCV son punteros porque Yahoo manda null en bars sin negociación.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int    `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// LoadBars implementa ports.BarProvider. Con un rango acotado pide period1/period2;
// sin rango usa el range configurado en el client.
func (c *Client) LoadBars(ctx context.Context, stock domain.Stock, r domain.DateRange) (domain.BarSeries, error) {
	if stock.Symbol == "" {
		return nil, fmt.Errorf("yahoo.LoadBars %s: %w: no symbol configured", stock.Name, domain.ErrUnknownStock)
	}

	var chart chartResponse
	if err := c.get(ctx, c.chartURL(stock.Symbol, r), &chart); err != nil {
		return nil, fmt.Errorf("yahoo.LoadBars %s: %w", stock.Symbol, err)
	}

	bars, err := toBars(chart)
	if err != nil {
		return nil, fmt.Errorf("yahoo.LoadBars %s: %w", stock.Symbol, err)
	}
	return bars.Filter(r), nil
}

func (c *Client) chartURL(symbol string, r domain.DateRange) string {
	q := url.Values{}
	q.Set("interval", c.interval)
	q.Set("includePrePost", "false")
	if r.Start.IsZero() && r.End.IsZero() {
		q.Set("range", c.rng)
	} else {
		start, end := r.Start, r.End
		if end.IsZero() {
			end = time.Now()
		}
		q.Set("period1", fmt.Sprint(start.Unix()))
		// el límite es inclusivo: pedir hasta el final del día
		q.Set("period2", fmt.Sprint(end.Add(24*time.Hour).Unix()))
	}
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.base, url.PathEscape(symbol), q.Encode())
}

func toBars(chart chartResponse) (domain.BarSeries, error) {
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("api error %s: %s", e.Code, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}
	res := chart.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	q := res.Indicators.Quote[0]

	loc := time.UTC
	if res.Meta.GMTOffset != 0 {
		loc = time.FixedZone(res.Meta.Timezone, res.Meta.GMTOffset)
	}

	bars := make(domain.BarSeries, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, okO := at(q.Open, i)
		h, okH := at(q.High, i)
		l, okL := at(q.Low, i)
		cl, okC := at(q.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // bar sin negociación
		}
		vol, _ := at(q.Volume, i)
		bars = append(bars, domain.Bar{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: vol,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

func at(xs []*float64, i int) (float64, bool) {
	if i >= len(xs) || xs[i] == nil {
		return 0, false
	}
	return *xs[i], true
}
