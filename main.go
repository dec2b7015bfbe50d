package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"go-newspulse/config"
	"go-newspulse/internal/handler"
	"go-newspulse/internal/logger"
	"go-newspulse/internal/model"
	"go-newspulse/internal/scheduler"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "newspulse",
	Short:         "News aggregation, enrichment and relevance filtering service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with scheduled refresh and sweep jobs",
	RunE:  runServe,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Aggregate once and print the filtered articles as JSON",
	Long: `Run one aggregation batch and print the ranked result to stdout.

Examples:
  newspulse fetch --categories technology,ai-technology --limit 10
  newspulse fetch --sentiment negative --max-age 24
  newspulse fetch --keywords bitcoin --lang es`,
	RunE: runFetch,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired translation cache records",
	RunE:  runSweep,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	fetchCmd.Flags().StringSlice("categories", nil, "category keys to keep")
	fetchCmd.Flags().StringSlice("keywords", nil, "keywords that must appear")
	fetchCmd.Flags().StringSlice("exclude", nil, "keywords that drop an article")
	fetchCmd.Flags().StringSlice("regions", nil, "news regions to keep")
	fetchCmd.Flags().String("sentiment", "", "positive, negative, neutral or urgent")
	fetchCmd.Flags().Float64("max-age", 0, "maximum article age in hours")
	fetchCmd.Flags().String("sort", "relevance", "relevance, date or popularity")
	fetchCmd.Flags().Int("limit", 20, "maximum number of articles")
	fetchCmd.Flags().String("lang", "", "translate titles into this language")

	rootCmd.AddCommand(serveCmd, fetchCmd, sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("newspulse failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Debug)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.NewScheduler(a.news, a.translations, cfg.Cron)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if err := config.Watch(ctx, configPath, func(sources []model.Source) {
		a.news.SetSources(context.Background(), sources)
	}); err != nil {
		slog.Warn("config watch disabled", "error", err)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := handler.NewHandler(a.news, a.translator, a.translations, a.status)
	h.SetScheduler(sched)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Warm the article cache.
		a.news.Refresh(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "sources", len(cfg.EnabledSources()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	flags := cmd.Flags()
	var req model.NewsRequest
	req.Criteria.Categories, _ = flags.GetStringSlice("categories")
	req.Criteria.Keywords, _ = flags.GetStringSlice("keywords")
	req.Criteria.ExcludeKeywords, _ = flags.GetStringSlice("exclude")
	req.Criteria.Regions, _ = flags.GetStringSlice("regions")
	sentiment, _ := flags.GetString("sentiment")
	req.Criteria.Sentiment = model.Sentiment(sentiment)
	req.Criteria.MaxAgeHours, _ = flags.GetFloat64("max-age")
	sortBy, _ := flags.GetString("sort")
	req.Criteria.SortBy = model.SortBy(sortBy)
	req.Criteria.Limit, _ = flags.GetInt("limit")
	req.PerPage = req.Criteria.Limit
	req.TargetLanguage, _ = flags.GetString("lang")

	page, err := a.news.GetNews(cmd.Context(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.translations.Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired translations\n", n)
	return nil
}
