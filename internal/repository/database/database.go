// Package database хранит ссылки и переходы в PostgreSQL.
package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type LinkRepository struct {
	DB *sql.DB
}

func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{
		DB: db,
	}
}

// Create сохраняет ссылку, занятый код даёт model.ErrCodeTaken
func (r *LinkRepository) Create(link model.Link) error {
	query := `
	INSERT INTO links (code, original_url, created_at, expires_at)
	VALUES ($1, $2, $3, $4)
`
	_, err := r.DB.Exec(query, link.Code, link.OriginalURL, link.CreatedAt, link.ExpiresAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("create %q: %w", link.Code, model.ErrCodeTaken)
	}
	if err != nil {
		return fmt.Errorf("ошибка при сохранении ссылки: %w", err)
	}

	return nil
}

func (r *LinkRepository) Get(code string) (model.Link, error) {
	var (
		link    model.Link
		expires sql.NullTime
	)
	query := `SELECT code, original_url, created_at, expires_at FROM links WHERE code = $1`

	err := r.DB.QueryRow(query, code).Scan(&link.Code, &link.OriginalURL, &link.CreatedAt, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Link{}, fmt.Errorf("get %q: %w", code, model.ErrNotFound)
	}
	if err != nil {
		return model.Link{}, fmt.Errorf("ошибка при получении ссылки: %w", err)
	}

	link.CreatedAt = link.CreatedAt.UTC()
	if expires.Valid {
		t := expires.Time.UTC()
		link.ExpiresAt = &t
	}
	return link, nil
}

// AddClick записывает переход, для неизвестного кода model.ErrNotFound
func (r *LinkRepository) AddClick(click model.ClickEvent) error {
	query := `
	INSERT INTO clicks (id, code, ip_address, user_agent, country, clicked_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.DB.Exec(query, click.ID, click.Code, click.IPAddress, click.UserAgent, click.Country, click.ClickedAt)
	if pgErrCode(err) == pgerrcode.ForeignKeyViolation {
		return fmt.Errorf("click %q: %w", click.Code, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("ошибка при сохранении перехода: %w", err)
	}

	return nil
}

// Clicks переходы по коду в порядке записи
func (r *LinkRepository) Clicks(code string) ([]model.ClickEvent, error) {
	if _, err := r.Get(code); err != nil {
		return nil, err
	}

	query := `
	SELECT id, code, ip_address, user_agent, country, clicked_at
	FROM clicks
	WHERE code = $1
	ORDER BY seq
`
	rows, err := r.DB.Query(query, code)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении переходов: %w", err)
	}
	defer rows.Close()

	var clicks []model.ClickEvent
	for rows.Next() {
		var c model.ClickEvent
		if err := rows.Scan(&c.ID, &c.Code, &c.IPAddress, &c.UserAgent, &c.Country, &c.ClickedAt); err != nil {
			return nil, fmt.Errorf("ошибка при чтении перехода: %w", err)
		}
		c.ClickedAt = c.ClickedAt.UTC()
		clicks = append(clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении переходов: %w", err)
	}

	return clicks, nil
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.UniqueViolation
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
