// Command devapi локальный API сокращателя ссылок для разработки клиента.
// Повторяет HTTP интерфейс боевого сервиса. Хранит ссылки в памяти,
// а если задан DATABASE_DSN, то в PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Popolzen/shortlink/internal/config"
	"github.com/Popolzen/shortlink/internal/config/db"
	"github.com/Popolzen/shortlink/internal/handler"
	"github.com/Popolzen/shortlink/internal/logger"
	"github.com/Popolzen/shortlink/internal/repository"
	dbrepo "github.com/Popolzen/shortlink/internal/repository/database"
	"github.com/Popolzen/shortlink/internal/repository/memory"
	"github.com/Popolzen/shortlink/internal/service/shortener"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.LoadServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}

	// Инициализируем логгер
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal("Не удалось инициализировать логгер: ", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger.L()); err != nil {
		logger.L().Error("Сервис остановлен с ошибкой", zap.Error(err))
	}
}

// run запускает сервер и останавливает его при отмене ctx
func run(ctx context.Context, cfg *config.ServerConfig, l *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	app, err := newApp(cfg, l)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("devapi запущен", zap.String("addr", cfg.GetAddress()), zap.String("base_url", cfg.GetBaseURL()))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Получен сигнал остановки, завершаем работу...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newApp(cfg *config.ServerConfig, l *zap.Logger) (*App, error) {
	app := &App{log: l}

	var repo repository.LinkRepository
	if cfg.DatabaseDSN != "" {
		database, err := db.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(); err != nil {
			database.Close()
			return nil, err
		}
		l.Info("Хранилище: PostgreSQL")
		repo = dbrepo.NewLinkRepository(database.DB)
		app.db = database
	} else {
		l.Info("Хранилище: память")
		repo = memory.NewLinkRepository()
	}

	svc := shortener.NewLinkService(repo, cfg.GetBaseURL(), l)
	app.server = &http.Server{
		Addr:              cfg.GetAddress(),
		Handler:           handler.NewRouter(svc, cfg, l, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return app, nil
}

func printBuildInfo() {
	version := "N/A"
	date := "N/A"
	commit := "N/A"

	if buildVersion != "" {
		version = buildVersion
	}
	if buildDate != "" {
		date = buildDate
	}
	if buildCommit != "" {
		commit = buildCommit
	}

	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", date)
	fmt.Printf("Build commit: %s\n", commit)
}
