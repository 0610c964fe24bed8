package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/ramkansal/leadercrawl/internal/config"
	"github.com/ramkansal/leadercrawl/internal/crawler"
	"github.com/ramkansal/leadercrawl/internal/output"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "1.0.0"

func main() {
	enableANSI()
	if err := newRootCmd().Execute(); err != nil {
		fatal("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "leadercrawl",
		Short: "Collect every country's political leaders with a short biography",
		Long: `leadercrawl lists the countries known to the directory service, fetches each
country's leaders, attaches the first paragraph of every leader's reference page
and saves the result as JSON.

Every flag can also be set through a LEADERS_* environment variable
(e.g. LEADERS_ROOT_URL, LEADERS_OUTPUT) or a --config file.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *crawler.CrawlConfig, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	noColor = noColor || cfg.NoColor
	logger := newLogger(cfg)

	if !cfg.Silent {
		printBanner(stdout)
		fmt.Fprintf(stdout, "\n  %s %s\n", clr("cyan", "Source:"), cfg.RootURL)
		fmt.Fprintf(stdout, "  %s %d  %s %s  %s %s\n\n",
			clr("dim", "Parallelism:"), cfg.Parallelism,
			clr("dim", "Fetcher:"), string(cfg.FetcherMode),
			clr("dim", "Output:"), cfg.OutputPath,
		)
	}

	c := crawler.New(cfg, crawler.WithLogger(logger))
	if err := c.Init(); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	report := output.NewReportWriter(stdout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range c.Events() {
			handleEvent(event, report)
		}
	}()

	summary, err := c.Run(ctx)
	<-done
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Warn().Msg("run interrupted, countries not yet started were skipped")
	}

	fmt.Fprintf(stdout, "  %s Fetched and enriched %d countries in %s\n\n",
		clr("green", "✓"), len(summary.Countries), output.FmtDur(summary.Duration))
	if cfg.Silent {
		return nil
	}
	return report.Finalize(summary)
}

func handleEvent(event plugin.CrawlEvent, report *output.ReportWriter) {
	switch event.Type {
	case plugin.EventCountryDone, plugin.EventCountryFailed:
		if event.Result != nil {
			report.WriteResult(event.Result)
		}
	}
}

func newLogger(cfg *crawler.CrawlConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case cfg.Verbose:
		level = zerolog.DebugLevel
	case cfg.Silent:
		level = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()[:8]).
		Logger()
}

// ---------- Banner ----------

func printBanner(w io.Writer) {
	fig := figure.NewFigure("leadercrawl", "cybermedium", true)
	fmt.Fprintln(w, clr("cyan", fig.String()))
	fmt.Fprintf(w, "  %s  %s\n", clr("dim", "Country leaders with a first paragraph each"), clr("dim", "v"+version))
	fmt.Fprintf(w, "  %s\n", clr("dim", strings.Repeat("─", 58)))
}

// ---------- Utilities ----------

var noColor bool

func clr(color, text string) string {
	if noColor {
		return text
	}
	codes := map[string]string{
		"red":    "\033[31m",
		"green":  "\033[32m",
		"yellow": "\033[33m",
		"cyan":   "\033[36m",
		"dim":    "\033[2m",
		"bold":   "\033[1m",
		"reset":  "\033[0m",
	}
	c, ok := codes[color]
	if !ok {
		return text
	}
	return c + text + codes["reset"]
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr("red", "ERROR:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
