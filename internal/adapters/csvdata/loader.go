// Package csvdata carga series OHLCV desde los ficheros CSV exportados por el
// broker (una fila por bar, cabecera con date/open/high/low/close/volume).
package csvdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrMissingColumn se devuelve cuando la cabecera no trae una columna obligatoria.
var ErrMissingColumn = errors.New("missing csv column")

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

// layouts aceptados para la columna date. Los que no llevan offset se interpretan
// en la location del loader.
var layouts = []struct {
	layout string
	naive  bool
}{
	{"2006-01-02 15:04:05-07:00", false},
	{"2006-01-02 15:04:05Z07:00", false},
	{time.RFC3339, false},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", true},
}

// Loader implementa ports.BarProvider leyendo <dir>/<stock.File>.
type Loader struct {
	dir string
	loc *time.Location
}

// NewLoader crea un loader sobre dir. loc es la zona de los timestamps sin offset;
// nil equivale a UTC.
func NewLoader(dir string, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{dir: dir, loc: loc}
}

// LoadBars lee el fichero del stock y devuelve los bars dentro del rango.
func (l *Loader) LoadBars(ctx context.Context, stock domain.Stock, r domain.DateRange) (domain.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if stock.File == "" {
		return nil, fmt.Errorf("csvdata.LoadBars %s: %w: no file configured", stock.Name, domain.ErrUnknownStock)
	}

	path := filepath.Join(l.dir, stock.File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata.LoadBars %s: %w", stock.Name, err)
	}
	defer f.Close()

	bars, err := Parse(f, l.loc)
	if err != nil {
		return nil, fmt.Errorf("csvdata.LoadBars %s (%s): %w", stock.Name, path, err)
	}
	return bars.Filter(r), nil
}

// Parse lee un CSV completo. Las cabeceras se normalizan a minúsculas; las columnas
// extra se ignoran. Las filas se ordenan por fecha y la serie se valida.
func Parse(rd io.Reader, loc *time.Location) (domain.BarSeries, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, domain.ErrEmptySeries
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var bars domain.BarSeries
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		b, err := parseRecord(rec, cols, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, domain.ErrEmptySeries
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func parseRecord(rec []string, cols map[string]int, loc *time.Location) (domain.Bar, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ts, err := parseTime(field("date"), loc)
	if err != nil {
		return domain.Bar{}, err
	}

	var vals [5]float64
	for i, name := range requiredColumns[1:] {
		d, err := decimal.NewFromString(field(name))
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidBar, name, field(name))
		}
		vals[i] = d.InexactFloat64()
	}
	return domain.Bar{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, l := range layouts {
		var t time.Time
		var err error
		if l.naive {
			t, err = time.ParseInLocation(l.layout, s, loc)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", domain.ErrInvalidBar, s)
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
