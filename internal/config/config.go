// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pageharvest/pageharvest/internal/scraper"
)

// fetchTimeoutCeilingSeconds caps how long a single page fetch may run.
const fetchTimeoutCeilingSeconds = 120

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Store     StoreConfig     `mapstructure:"store"`
	Scrape    TargetConfig    `mapstructure:"scrape"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// StoreConfig selects and configures the item store backend.
type StoreConfig struct {
	Provider        string `mapstructure:"provider"`
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifeMins int    `mapstructure:"max_conn_life_minutes"`
}

// TargetConfig holds the default scrape target used by the CLI and by
// scrape requests that omit a target of their own.
type TargetConfig struct {
	URL       string          `mapstructure:"url"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
}

// SelectorsConfig mirrors scraper.Selectors for mapstructure decoding.
type SelectorsConfig struct {
	Article string `mapstructure:"article"`
	Title   string `mapstructure:"title"`
	Link    string `mapstructure:"link"`
	Price   string `mapstructure:"price"`
}

// PublisherConfig selects the scrape-event publisher backend.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ArchiveConfig selects the page snapshot archive backend.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_seconds", fetchTimeoutCeilingSeconds)
	v.SetDefault("fetch.user_agent", "pageharvest-bot/0.1")
	v.SetDefault("store.provider", "memory")
	v.SetDefault("store.table", "scraped_items")
	v.SetDefault("scrape.url", "http://books.toscrape.com/")
	v.SetDefault("scrape.selectors.article", "article.product_pod")
	v.SetDefault("scrape.selectors.title", "h3 > a")
	v.SetDefault("scrape.selectors.link", "h3 > a")
	v.SetDefault("scrape.selectors.price", "div.product_price > p.price_color")
	v.SetDefault("publisher.provider", "noop")
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 || c.Fetch.TimeoutSeconds > fetchTimeoutCeilingSeconds {
		return fmt.Errorf("fetch.timeout_seconds must be in (0, %d]", fetchTimeoutCeilingSeconds)
	}
	switch c.Store.Provider {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	switch c.Publisher.Provider {
	case "", "noop", "memory":
	case "pubsub":
		if c.Publisher.ProjectID == "" || c.Publisher.Topic == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic must be set when publisher.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown publisher provider: %s", c.Publisher.Provider)
	}
	switch c.Archive.Provider {
	case "", "noop", "memory":
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket must be set when archive.provider is gcs")
		}
	default:
		return fmt.Errorf("unknown archive provider: %s", c.Archive.Provider)
	}
	return nil
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ScrapeTarget converts the configured default target into a scraper.Config.
func (c Config) ScrapeTarget() scraper.Config {
	return scraper.Config{
		URL: c.Scrape.URL,
		Selectors: scraper.Selectors{
			Article: c.Scrape.Selectors.Article,
			Title:   c.Scrape.Selectors.Title,
			Link:    c.Scrape.Selectors.Link,
			Price:   c.Scrape.Selectors.Price,
		},
	}
}
