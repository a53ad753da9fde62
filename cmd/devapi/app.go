package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Popolzen/shortlink/internal/config/db"
	"go.uber.org/zap"
)

type App struct {
	server *http.Server
	db     *db.DataBase
	log    *zap.Logger
}

// Shutdown выполняет graceful shutdown с таймаутом
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("Останавливаем HTTP сервер...")
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	if a.db != nil {
		a.log.Info("Закрываем подключение к БД...")
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}
	a.log.Info("Сервис остановлен gracefully")
	return nil
}
