package model

import (
	"errors"
	"maps"
	"time"
)

// ShortenRequest тело запроса на сокращение ссылки
type ShortenRequest struct {
	URL       string     `json:"url" validate:"required,httpurl"`
	Custom    string     `json:"custom,omitempty" validate:"omitempty,alias"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShortenResult ответ сервиса на сокращение
type ShortenResult struct {
	ShortURL string `json:"short_url"`
	Code     string `json:"code"`
}

// AnalyticsResult статистика переходов по короткой ссылке
type AnalyticsResult struct {
	Code            string           `json:"code"`
	OriginalURL     string           `json:"original_url"`
	TotalClicks     int64            `json:"total_clicks"`
	UniqueIPs       int64            `json:"unique_ips"`
	ClicksByCountry map[string]int64 `json:"clicks_by_country"`
}

// Clone возвращает копию, не разделяющую карту стран с оригиналом
func (a AnalyticsResult) Clone() AnalyticsResult {
	a.ClicksByCountry = maps.Clone(a.ClicksByCountry)
	return a
}

// QRImage декодированный QR-код, готовый к отображению
type QRImage struct {
	Data      []byte `json:"-"`
	MediaType string `json:"media_type"`
	DataURI   string `json:"-"`
}

// ShortLink короткая ссылка для показа пользователю
type ShortLink struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

// CountryStat число переходов из одной страны
type CountryStat struct {
	Country string `json:"country"`
	Clicks  int64  `json:"clicks"`
}

// Link запись о короткой ссылке на стороне сервиса
type Link struct {
	Code        string     `json:"code"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Expired сообщает, истёк ли срок жизни ссылки к моменту now
func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.UTC().After(l.ExpiresAt.UTC())
}

// ClickEvent переход по короткой ссылке
type ClickEvent struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Country   string    `json:"country"`
	ClickedAt time.Time `json:"clicked_at"`
}

var (
	// ErrQRDecode полученные байты не являются изображением
	ErrQRDecode = errors.New("qr payload is not a decodable image")
	// ErrMissingCode сервис вернул ответ без кода
	ErrMissingCode = errors.New("response has no short code")

	ErrNotFound    = errors.New("short url not found")
	ErrCodeTaken   = errors.New("code already exists")
	ErrLinkExpired = errors.New("link expired")
)
