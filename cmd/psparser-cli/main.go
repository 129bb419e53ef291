package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"psparser/internal/bootstrap"
	"psparser/internal/config"
	"psparser/internal/logger"
	"psparser/internal/metrics"
	jsonfile "psparser/internal/repository/json"
)

var version = "dev"

const exitConfig = 2

func main() {
	app := &cli.App{
		Name:    "psparser",
		Usage:   "collect PlayStation Store catalog and subscription prices",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config/config.yaml",
				Usage:   "path to config.yaml",
				EnvVars: []string{"PSPARSER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "override log level (debug, info, warn, error)",
				EnvVars: []string{"PSPARSER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "serve /metrics on this address while the run lasts",
				EnvVars: []string{"PSPARSER_METRICS_ADDR"},
			},
		},
		Commands: []*cli.Command{
			gamesCommand(),
			subscriptionsCommand(),
			allCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func gamesCommand() *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "crawl storefront listings into the catalog file",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "region", Aliases: []string{"r"}, Usage: "only these regions (repeatable)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "override output.catalog_file"},
		},
		Action: func(c *cli.Context) error {
			return withRun(c, func(ctx context.Context, r *run) error {
				if out := c.String("out"); out != "" {
					r.cfg.Output.CatalogFile = out
				}
				return r.games(ctx, c.StringSlice("region"))
			})
		},
	}
}

func subscriptionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "subscriptions",
		Usage: "rebuild the subscription pricing file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "override output.pricing_file"},
		},
		Action: func(c *cli.Context) error {
			return withRun(c, func(ctx context.Context, r *run) error {
				if out := c.String("out"); out != "" {
					r.cfg.Output.PricingFile = out
				}
				return r.subscriptions(ctx)
			})
		},
	}
}

func allCommand() *cli.Command {
	return &cli.Command{
		Name:  "all",
		Usage: "run games, then subscriptions",
		Action: func(c *cli.Context) error {
			return withRun(c, func(ctx context.Context, r *run) error {
				if err := r.games(ctx, nil); err != nil {
					return err
				}
				return r.subscriptions(ctx)
			})
		},
	}
}

type run struct {
	cfg *config.Config
	log *slog.Logger
	rec *metrics.Collector
}

// withRun loads config, sets up logging and metrics, and cancels fn on
// SIGINT/SIGTERM.
func withRun(c *cli.Context, fn func(ctx context.Context, r *run) error) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), exitConfig)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Env:       cfg.Env,
	}).With("run_id", uuid.NewString())
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	r := &run{cfg: cfg, log: log, rec: metrics.NewCollector(reg)}

	if addr := c.String("metrics-addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = fn(ctx, r)

	var ve *config.ValidationError
	if errors.As(err, &ve) {
		log.Error("invalid config", "problems", ve.Problems)
		return cli.Exit(ve.Error(), exitConfig)
	}
	return err
}

func (r *run) games(ctx context.Context, regions []string) error {
	if err := r.cfg.ValidateCatalog(); err != nil {
		return err
	}
	sources := bootstrap.Sources(r.cfg, regions...)
	if len(sources) == 0 {
		return &config.ValidationError{Problems: []string{fmt.Sprintf("no sources match regions %v", regions)}}
	}

	path := r.cfg.Output.CatalogFile
	release, err := jsonfile.Lock(path, time.Duration(r.cfg.Output.LockTTLSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, jsonfile.ErrLocked) {
			r.log.Warn("catalog run skipped", "err", err)
			return nil
		}
		return err
	}
	defer release()

	f, err := bootstrap.BuildFetcher(r.cfg, r.log, r.rec)
	if err != nil {
		return err
	}
	store := jsonfile.NewCatalog(path, r.log)
	crawler := bootstrap.NewCatalogCrawler(r.cfg, f, store, r.log, r.rec)

	sum, err := crawler.Run(ctx, sources)
	r.log.Info("catalog done",
		"pages", sum.Pages,
		"failed_pages", sum.FailedPages,
		"stubs", sum.Stubs,
		"free_skipped", sum.Free,
		"added", sum.Added,
		"duplicates", sum.Skipped,
		"output", path,
	)
	if errors.Is(err, context.Canceled) {
		r.log.Warn("catalog run interrupted")
		return nil
	}
	return err
}

func (r *run) subscriptions(ctx context.Context) error {
	if err := r.cfg.ValidatePricing(); err != nil {
		return err
	}

	path := r.cfg.Output.PricingFile
	release, err := jsonfile.Lock(path, time.Duration(r.cfg.Output.LockTTLSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, jsonfile.ErrLocked) {
			r.log.Warn("pricing run skipped", "err", err)
			return nil
		}
		return err
	}
	defer release()

	f, err := bootstrap.BuildFetcher(r.cfg, r.log, r.rec)
	if err != nil {
		return err
	}
	runner := bootstrap.NewPricingRunner(r.cfg, f, jsonfile.NewPricing(path, r.log), r.log, r.rec)

	offers, err := runner.Run(ctx, bootstrap.PricingTargets(r.cfg))
	switch {
	case errors.Is(err, context.Canceled):
		r.log.Warn("pricing run interrupted")
		return nil
	case err != nil:
		// the previous file stays in place
		r.log.Error("save pricing failed", "err", err, "output", path)
		return nil
	}
	r.log.Info("pricing done", "offers", len(offers), "output", path)
	return nil
}
