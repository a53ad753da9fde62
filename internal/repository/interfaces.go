package repository

import "github.com/Popolzen/shortlink/internal/model"

//go:generate mockgen -source=interfaces.go -destination=mocks/repository_mock.go -package=mocks

// LinkRepository хранилище ссылок и переходов локального API
type LinkRepository interface {
	// Create сохраняет ссылку, model.ErrCodeTaken если код занят
	Create(link model.Link) error
	// Get model.ErrNotFound если ссылки нет
	Get(code string) (model.Link, error)
	AddClick(click model.ClickEvent) error
	// Clicks переходы по коду в порядке записи
	Clicks(code string) ([]model.ClickEvent, error)
}
