package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartspend/backend/internal/domain/chat"
	chathandler "github.com/smartspend/backend/internal/domain/chat/handler"
	"github.com/smartspend/backend/internal/domain/expense"
	expensehandler "github.com/smartspend/backend/internal/domain/expense/handler"
	"github.com/smartspend/backend/pkg/config"
	"github.com/smartspend/backend/pkg/cron"
	"github.com/smartspend/backend/pkg/metrics"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Taxonomy    *expense.Taxonomy
	Parser      *expense.Parser
	Responder   *expense.Responder
	Suggester   *expense.Suggester
	SearchIndex *expense.SearchIndex
	Recorder    *expense.MemoryRecorder

	History     *chat.History
	ChatService *chat.Service
	Scheduler   *cron.Scheduler

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	ChatHandler    *chathandler.ChatHandler
	ExpenseHandler *expensehandler.ExpenseHandler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initTaxonomy(); err != nil {
		return nil, fmt.Errorf("failed to init taxonomy: %w", err)
	}

	deps.initMetrics()

	if err := deps.initDomain(); err != nil {
		return nil, fmt.Errorf("failed to init domain: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully",
		slog.Int("categories", deps.Taxonomy.Len()),
	)

	return deps, nil
}

// initTaxonomy builds the category taxonomy, optionally extended from CSV.
func (d *Dependencies) initTaxonomy() error {
	taxonomy := expense.DefaultTaxonomy()

	if path := d.Config.Taxonomy.CSVPath; path != "" {
		extra, err := expense.LoadTaxonomyCSVFile(path)
		if err != nil {
			return err
		}
		taxonomy, err = taxonomy.Extend(extra)
		if err != nil {
			return err
		}
		d.Logger.Info("taxonomy extended from csv",
			slog.String("path", path),
			slog.Int("added", len(extra)),
		)
	}

	d.Taxonomy = taxonomy
	return nil
}

func (d *Dependencies) initMetrics() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d.Metrics = metrics.New(registry)
	d.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func (d *Dependencies) initDomain() error {
	d.Parser = expense.NewParser(d.Taxonomy)
	d.Responder = expense.NewResponder(d.Taxonomy)
	d.Suggester = expense.NewSuggester(d.Taxonomy)
	d.Recorder = expense.NewMemoryRecorder(d.Taxonomy)

	searchIndex, err := expense.NewSearchIndex(d.Taxonomy)
	if err != nil {
		return err
	}
	d.SearchIndex = searchIndex

	d.History = chat.NewHistory(d.Config.Chat.HistoryRetention)
	d.ChatService = chat.NewService(d.Parser, d.Responder, d.Recorder, d.History, d.Logger, d.Metrics)
	d.Scheduler = cron.NewScheduler(d.History, d.Logger)

	return nil
}

func (d *Dependencies) initHandlers() {
	d.ChatHandler = chathandler.NewChatHandler(d.ChatService, d.Logger)
	d.ExpenseHandler = expensehandler.NewExpenseHandler(
		d.Parser, d.Taxonomy, d.Suggester, d.SearchIndex, d.Recorder, d.Logger,
	)
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
}
