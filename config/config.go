package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // Asia/Kolkata sin depender del sistema

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/strategy"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout es el formato de las fechas en el YAML, el entorno y los flags.
const DateLayout = "2006-01-02"

// Fuentes de datos soportadas.
const (
	SourceCSV   = "csv"
	SourceYahoo = "yahoo"
)

// ErrInvalid envuelve cualquier error de validación.
var ErrInvalid = errors.New("invalid config")

// Config es la configuración completa del backtester.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Stocks   []StockConfig  `yaml:"stocks"`
	Backtest BacktestConfig `yaml:"backtest"`
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Yahoo    YahooConfig    `yaml:"yahoo"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig indica de dónde salen las barras.
type DataConfig struct {
	Source   string `yaml:"source"`   // csv | yahoo
	Dir      string `yaml:"dir"`      // directorio de los CSV
	Timezone string `yaml:"timezone"` // zona para timestamps sin offset, p.ej. "Asia/Kolkata"
}

// StockConfig es un stock y la variante de estrategia que se le aplica.
type StockConfig struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Symbol   string `yaml:"symbol"`
	Strategy string `yaml:"strategy"`
}

// BacktestConfig controla el rango y el paralelismo del backtest.
type BacktestConfig struct {
	Start     string `yaml:"start"` // YYYY-MM-DD, inclusivo
	End       string `yaml:"end"`   // YYYY-MM-DD, inclusivo
	Workers   int    `yaml:"workers"`
	Benchmark string `yaml:"benchmark"` // nombre de un stock configurado; vacío = sin benchmark
}

// StorageConfig controla dónde se persisten las ejecuciones.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ScheduleConfig controla el modo watch.
type ScheduleConfig struct {
	Cron string `yaml:"cron"` // spec de 6 campos (con segundos)
}

// YahooConfig configura el proveedor remoto.
type YahooConfig struct {
	Base     string `yaml:"base"`
	Interval string `yaml:"interval"`
	Range    string `yaml:"range"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un path vacío equivale a usar solo entorno y defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba fechas, fuente de datos y nombres de estrategia.
func (c *Config) Validate() error {
	if c.Data.Source != SourceCSV && c.Data.Source != SourceYahoo {
		return fmt.Errorf("%w: data.source %q", ErrInvalid, c.Data.Source)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	r, err := c.Range()
	if err != nil {
		return err
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return fmt.Errorf("%w: backtest.start %s after backtest.end %s", ErrInvalid, c.Backtest.Start, c.Backtest.End)
	}

	registry := strategy.DefaultRegistry()
	seen := make(map[string]bool, len(c.Stocks))
	for _, s := range c.Stocks {
		if s.Name == "" {
			return fmt.Errorf("%w: stock without name", ErrInvalid)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate stock %q", ErrInvalid, s.Name)
		}
		seen[s.Name] = true
		if _, ok := registry.Get(s.Strategy); !ok {
			return fmt.Errorf("%w: stock %q: unknown strategy %q", ErrInvalid, s.Name, s.Strategy)
		}
	}
	if c.Backtest.Benchmark != "" && !seen[c.Backtest.Benchmark] {
		return fmt.Errorf("%w: benchmark %q is not a configured stock", ErrInvalid, c.Backtest.Benchmark)
	}
	if c.Backtest.Workers < 0 {
		return fmt.Errorf("%w: backtest.workers %d", ErrInvalid, c.Backtest.Workers)
	}
	return nil
}

// Location devuelve la zona horaria de los datos.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: data.timezone %q: %v", ErrInvalid, c.Data.Timezone, err)
	}
	return loc, nil
}

// Range devuelve el rango de fechas del backtest.
func (c *Config) Range() (domain.DateRange, error) {
	return ParseRange(c.Backtest.Start, c.Backtest.End)
}

// ParseRange parsea un par de fechas YYYY-MM-DD. Un lado vacío queda sin límite.
// Ambos límites son medianoche; el final incluye solo la barra de las 00:00.
func ParseRange(start, end string) (domain.DateRange, error) {
	var r domain.DateRange
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return r, fmt.Errorf("%w: start date %q", ErrInvalid, start)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return r, fmt.Errorf("%w: end date %q", ErrInvalid, end)
		}
		r.End = t
	}
	return r, nil
}

// DomainStocks convierte la lista configurada a domain.Stock.
func (c *Config) DomainStocks() []domain.Stock {
	out := make([]domain.Stock, 0, len(c.Stocks))
	for _, s := range c.Stocks {
		out = append(out, domain.Stock{Name: s.Name, File: s.File, Symbol: s.Symbol, Strategy: s.Strategy})
	}
	return out
}

// BenchmarkStock devuelve el stock de referencia, o un Stock vacío si no hay.
func (c *Config) BenchmarkStock() domain.Stock {
	for _, s := range c.DomainStocks() {
		if s.Name == c.Backtest.Benchmark {
			return s
		}
	}
	return domain.Stock{}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.Data.Source = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("SQLITE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("BACKTEST_START"); v != "" {
		cfg.Backtest.Start = v
	}
	if v := os.Getenv("BACKTEST_END"); v != "" {
		cfg.Backtest.End = v
	}
	if v := os.Getenv("BACKTEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backtest.Workers = n
		}
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
}

// defaultStocks reproduce el dashboard original: un stock por variante.
func defaultStocks() []StockConfig {
	return []StockConfig{
		{Name: "ACC", File: "ACC-15minute", Symbol: "ACC.NS", Strategy: strategy.MomentumName},
		{Name: "Adani Enterprises", File: "ADANIENT-15minute", Symbol: "ADANIENT.NS", Strategy: strategy.Breakout20Name},
		{Name: "Adani Power", File: "ADANIPOWER-15minute", Symbol: "ADANIPOWER.NS", Strategy: strategy.GoldenCrossName},
		{Name: "Adani Ports", File: "ADANIPORTS-15minute", Symbol: "ADANIPORTS.NS", Strategy: strategy.Breakout30Name},
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Data.Source == "" {
		cfg.Data.Source = SourceCSV
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "csv_data"
	}
	if cfg.Data.Timezone == "" {
		cfg.Data.Timezone = "Asia/Kolkata"
	}
	if len(cfg.Stocks) == 0 {
		cfg.Stocks = defaultStocks()
	}
	if cfg.Backtest.Start == "" && cfg.Backtest.End == "" {
		cfg.Backtest.Start = "2015-02-02"
		cfg.Backtest.End = "2019-05-15"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "swingdesk.db"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 18 * * 1-5" // cierre de mercado, días laborables
	}
	if cfg.Yahoo.Interval == "" {
		cfg.Yahoo.Interval = "15m"
	}
	if cfg.Yahoo.Range == "" {
		cfg.Yahoo.Range = "60d"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
