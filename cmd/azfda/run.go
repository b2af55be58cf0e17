package main

import (
	"context"
	"fmt"
	"io"

	"github.com/linesd/az-fda/pkg/analysis"
	"github.com/linesd/az-fda/pkg/client"
	"github.com/linesd/az-fda/pkg/config"
	"github.com/linesd/az-fda/pkg/logging"
	"github.com/linesd/az-fda/pkg/metrics"
	"github.com/linesd/az-fda/pkg/pagination"
	"github.com/linesd/az-fda/pkg/query"
	"github.com/linesd/az-fda/pkg/render"
	"github.com/linesd/az-fda/pkg/store"
	"github.com/rs/zerolog"
)

const resultsBanner = "****************RESULTS***********************"

// run executes one analysis. cfg must already be validated.
func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	level, _ := logging.ParseLogLevel(cfg.Logging.Level)
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Logging.Pretty,
		Output: stderr,
	})
	logger := logging.NewLogger("azfda")

	kind, err := analysis.ParseKind(cfg.AnalysisType)
	if err != nil {
		return err
	}
	chart, err := render.ParseChartKind(cfg.PlotType)
	if err != nil {
		return err
	}

	q, err := query.ForManufacturer(cfg.BaseURL, cfg.Manufacturer)
	if err != nil {
		return err
	}

	fdaClient, err := client.New(client.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.GetTimeout(),
	})
	if err != nil {
		return fmt.Errorf("create openFDA client: %w", err)
	}

	fetcher, err := pagination.NewFetcher(fdaClient, pagination.Config{PageSize: cfg.PageSize})
	if err != nil {
		return err
	}

	session := analysis.NewSession(fetcher, q)
	res, matrix, err := session.Series(ctx, kind)
	if err != nil {
		logger.Error().Err(err).Str("query", q.URL()).Msg("Analysis failed")
		return err
	}

	fmt.Fprintln(stdout, resultsBanner)
	fmt.Fprintln(stdout, render.ResultTable(res))

	dir := ""
	if cfg.SaveFig {
		dir = cfg.FiguresDir
	}
	renderer := render.New(stdout, render.DefaultConfig())
	if _, err := renderer.Render(matrix, kind.String(), chart, dir); err != nil {
		return err
	}

	publish(ctx, cfg, q, res, matrix, logger)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("Metrics textfile not written")
		}
	}

	return nil
}

// publish writes the run to every configured sink. Sink failures are logged,
// never returned: the results were already reported.
func publish(ctx context.Context, cfg *config.Config, q query.Query, res *analysis.Result, m *analysis.SeriesMatrix, logger zerolog.Logger) {
	var sinks []store.Sink

	if cfg.Store.RedisAddr != "" {
		rs, err := store.DialRedis(ctx, cfg.Store.RedisAddr, cfg.GetRedisTTL())
		if err != nil {
			logger.Warn().Err(err).Msg("Redis sink unavailable")
		} else {
			sinks = append(sinks, rs)
		}
	}
	if cfg.Store.SQLitePath != "" {
		ss, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			logger.Warn().Err(err).Msg("SQLite sink unavailable")
		} else {
			sinks = append(sinks, ss)
		}
	}
	if len(sinks) == 0 {
		return
	}
	defer func() {
		for _, s := range sinks {
			s.Close()
		}
	}()

	stored, err := store.NewRun(q.URL(), res, m)
	if err != nil {
		logger.Warn().Err(err).Msg("Run not stored")
		return
	}
	if err := store.SaveAll(ctx, stored, sinks...); err != nil {
		logger.Warn().Err(err).Str("run_id", stored.ID).Msg("Run not stored in every sink")
		return
	}
	logger.Info().Str("run_id", stored.ID).Int("sinks", len(sinks)).Msg("Run stored")
}
