// Package config loads a crawler.CrawlConfig from command-line flags,
// LEADERS_* environment variables and an optional config file, in that
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/ramkansal/leadercrawl/internal/crawler"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key to form its environment variable.
const EnvPrefix = "LEADERS"

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"root-url":          "root_url",
	"token-path":        "token_path",
	"countries-path":    "countries_path",
	"leaders-path":      "leaders_path",
	"user-agent":        "user_agent",
	"timeout":           "timeout",
	"max-response-size": "max_response_size",
	"parallelism":       "parallelism",
	"fetcher":           "fetcher",
	"browser-timeout":   "browser_timeout",
	"page-timeout":      "page_timeout",
	"cache-size":        "cache_size",
	"cache-ttl":         "cache_ttl",
	"output":            "output",
	"metrics-file":      "metrics_file",
	"silent":            "silent",
	"verbose":           "verbose",
	"no-color":          "no_color",
}

// RegisterFlags adds every setting to fs, with DefaultConfig values as defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := crawler.DefaultConfig()

	fs.String("config", "", "path to a config file (yaml, json or toml)")

	fs.StringP("root-url", "u", d.RootURL, "root URL of the directory service")
	fs.String("token-path", d.TokenPath, "path of the token (cookie) endpoint")
	fs.String("countries-path", d.CountriesPath, "path of the countries endpoint")
	fs.String("leaders-path", d.LeadersPath, "path of the leaders endpoint")

	fs.String("user-agent", d.UserAgent, "user-agent sent to every endpoint")
	fs.DurationP("timeout", "t", d.Timeout, "timeout of each HTTP request")
	fs.Int("max-response-size", d.MaxResponseSize, "maximum reference page size to read in bytes")
	fs.IntP("parallelism", "c", d.Parallelism, "countries processed concurrently (1 = sequential)")

	fs.StringP("fetcher", "f", string(d.FetcherMode), "reference page fetcher: http, browser, auto")
	fs.Duration("browser-timeout", d.BrowserTimeout, "browser fetcher navigation timeout")
	fs.Duration("page-timeout", d.PageTimeout, "browser fetcher wait for the page to settle")
	fs.Int("cache-size", d.CacheSize, "reference paragraphs cached per run (0 disables)")
	fs.Duration("cache-ttl", d.CacheTTL, "lifetime of a cached reference paragraph")

	fs.StringP("output", "o", d.OutputPath, "file the aggregate is saved to")
	fs.String("metrics-file", d.MetricsFile, "write run metrics in prometheus text format to this file")
	fs.Bool("silent", false, "only log warnings and errors, skip the report")
	fs.BoolP("verbose", "v", false, "log debug details")
	fs.Bool("no-color", false, "disable colored output")
}

// Load resolves the configuration from fs, the environment and the config
// file named by the --config flag, then validates it.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*crawler.CrawlConfig, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	setDefaults(v)

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", f.Value.String(), err)
		}
	}

	cfg := crawler.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := crawler.DefaultConfig()
	v.SetDefault("root_url", d.RootURL)
	v.SetDefault("token_path", d.TokenPath)
	v.SetDefault("countries_path", d.CountriesPath)
	v.SetDefault("leaders_path", d.LeadersPath)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_response_size", d.MaxResponseSize)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("fetcher", string(d.FetcherMode))
	v.SetDefault("browser_timeout", d.BrowserTimeout)
	v.SetDefault("page_timeout", d.PageTimeout)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("output", d.OutputPath)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("silent", d.Silent)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("no_color", d.NoColor)
}
