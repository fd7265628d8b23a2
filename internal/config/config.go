package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	"marketboard-api/pkg/confkit"
	marketpkg "marketboard-api/pkg/market"
	"marketboard-api/pkg/series"
)

type CacheTTL struct {
	Short  int `json:",default=10"` // seconds
	Medium int `json:",default=60"`
	Long   int `json:",default=300"`
}

// BoardConf drives the per-symbol feeds: which symbols to track, the bar
// interval served to the dashboard, and the period used for the analytics
// series.
type BoardConf struct {
	Symbols        []string `json:",optional"`
	BarInterval    string   `json:",default=1m"`
	Period         string   `json:",default=5m"`
	CandleLimit    int      `json:",default=500"`
	AnalyticsLimit int      `json:",default=200"`
	// RefreshSeconds is the poll cadence for REST-backed series.
	RefreshSeconds int `json:",default=60"`
	// StreamTrades enables the live trade stream merge on top of polling.
	StreamTrades bool `json:",default=true"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env   string          `json:",default=test"`
	Redis redis.RedisConf `json:",optional"`
	TTL   CacheTTL        `json:",optional"`
	Board BoardConf       `json:",optional"`

	Market confkit.Section[marketpkg.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if err := c.validateBoard(); err != nil {
		return err
	}
	return c.validateTTL()
}

func (c *Config) validateBoard() error {
	if len(c.Board.Symbols) == 0 {
		c.Board.Symbols = []string{"BTCUSDT"}
	}
	for i, sym := range c.Board.Symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			return errors.New("config: board.symbols must not contain empty entries")
		}
		c.Board.Symbols[i] = sym
	}
	if c.Board.BarInterval != "" {
		if _, err := series.ParseInterval(c.Board.BarInterval); err != nil {
			return fmt.Errorf("config: board.barInterval: %w", err)
		}
	}
	if c.Board.Period != "" {
		if _, err := series.ParseInterval(c.Board.Period); err != nil {
			return fmt.Errorf("config: board.period: %w", err)
		}
	}
	if c.Board.RefreshSeconds <= 0 {
		return errors.New("config: board.refreshSeconds must be positive")
	}
	return nil
}

func (c *Config) validateTTL() error {
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	if c.TTL.Long <= 0 {
		return errors.New("config: ttl.long must be positive")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	if err := c.Market.Hydrate(c.baseDir, marketpkg.LoadConfig); err != nil {
		return fmt.Errorf("load market config: %w", err)
	}
	return nil
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
