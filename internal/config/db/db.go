package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	migration "github.com/Popolzen/shortlink/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// DataBase представляет подключение к базе данных
type DataBase struct {
	*sql.DB
}

// Open открывает подключение по DSN и проверяет его
func Open(dsn string) (*DataBase, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть подключение: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка при подключении к БД: %w", err)
	}

	return &DataBase{DB: db}, nil
}

func (d *DataBase) Migrate() error {
	return migration.MigrateUp(d.DB)
}
