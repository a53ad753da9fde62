package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Popolzen/shortlink/internal/model"
)

type LinkRepository struct {
	mu     sync.RWMutex
	links  map[string]model.Link
	clicks map[string][]model.ClickEvent
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		links:  map[string]model.Link{},
		clicks: map[string][]model.ClickEvent{},
	}
}

func (r *LinkRepository) Create(link model.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.Code]; exists {
		return fmt.Errorf("create %q: %w", link.Code, model.ErrCodeTaken)
	}
	r.links[link.Code] = link
	return nil
}

func (r *LinkRepository) Get(code string) (model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if link, exists := r.links[code]; exists {
		return link, nil
	}
	return model.Link{}, fmt.Errorf("get %q: %w", code, model.ErrNotFound)
}

func (r *LinkRepository) AddClick(click model.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[click.Code]; !exists {
		return fmt.Errorf("click %q: %w", click.Code, model.ErrNotFound)
	}
	r.clicks[click.Code] = append(r.clicks[click.Code], click)
	return nil
}

// Clicks возвращает копию, вызывающий может её менять
func (r *LinkRepository) Clicks(code string) ([]model.ClickEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.links[code]; !exists {
		return nil, fmt.Errorf("clicks %q: %w", code, model.ErrNotFound)
	}
	return slices.Clone(r.clicks[code]), nil
}
