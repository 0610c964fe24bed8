package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ramkansal/leadercrawl/internal/crawler"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*crawler.CrawlConfig, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return Load(viper.New(), fs)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, crawler.DefaultConfig(), cfg)
	assert.Equal(t, "https://country-leaders.onrender.com/cookie", cfg.TokenURL())
	assert.Equal(t, "https://country-leaders.onrender.com/leaders", cfg.LeadersURL())
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load(t,
		"-u", "http://localhost:8000/",
		"-c", "4",
		"--timeout", "3s",
		"-f", "auto",
		"-o", "out.json",
		"--cache-size", "0",
	)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/", cfg.RootURL)
	assert.Equal(t, "http://localhost:8000/countries", cfg.CountriesURL())
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, crawler.FetcherAuto, cfg.FetcherMode)
	assert.Equal(t, "out.json", cfg.OutputPath)
	assert.Equal(t, 0, cfg.CacheSize)
}

func TestLoad_EnvironmentAndPrecedence(t *testing.T) {
	t.Setenv("LEADERS_PARALLELISM", "8")
	t.Setenv("LEADERS_OUTPUT", "from-env.json")
	t.Setenv("LEADERS_CACHE_TTL", "5m")

	cfg, err := load(t, "--output", "from-flag.json")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "from-flag.json", cfg.OutputPath, "flags win over the environment")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadercrawl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 3\nfetcher: browser\nleaders_path: /v2/leaders\n"), 0o644))

	cfg, err := load(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, crawler.FetcherBrowser, cfg.FetcherMode)
	assert.Equal(t, "https://country-leaders.onrender.com/v2/leaders", cfg.LeadersURL())
}

func TestLoad_Invalid(t *testing.T) {
	for name, args := range map[string][]string{
		"parallelism": {"-c", "0"},
		"fetcher":     {"-f", "carrier-pigeon"},
		"scheme":      {"-u", "ftp://example.org"},
		"timeout":     {"-t", "0s"},
		"output":      {"-o", " "},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, args...)
			assert.Error(t, err)
		})
	}

	_, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
