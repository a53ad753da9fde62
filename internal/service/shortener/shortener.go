package shortener

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/repository"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	codeLength  = 7
	maxAttempts = 1000

	// QRSize сторона PNG в пикселях
	QRSize = 256

	UnknownCountry = "Unknown"
)

// reservedCodes совпадают со статическими маршрутами API, такие ссылки
// никогда не дошли бы до редиректа
var reservedCodes = map[string]struct{}{
	"shorten":   {},
	"analytics": {},
	"qr":        {},
	"metrics":   {},
}

// LinkService логика локального API: сокращение, переходы, аналитика, QR
type LinkService struct {
	repo    repository.LinkRepository
	baseURL string
	log     *zap.Logger
	now     func() time.Time
	gen     func(length int) string
}

func NewLinkService(repo repository.LinkRepository, baseURL string, log *zap.Logger) *LinkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LinkService{
		repo:    repo,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
		now:     time.Now,
		gen:     generateCode,
	}
}

// ShortURL полный адрес короткой ссылки
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// Shorten сохраняет ссылку. Пользовательский код приводится к нижнему регистру,
// занятый или совпадающий с маршрутом API код даёт model.ErrCodeTaken.
// Иначе код генерируется.
func (s *LinkService) Shorten(req model.ShortenRequest) (model.ShortenResult, error) {
	req, err := model.NewShortenRequest(req.URL, req.Custom, req.ExpiresAt)
	if err != nil {
		return model.ShortenResult{}, err
	}

	link := model.Link{
		OriginalURL: req.URL,
		CreatedAt:   s.now().UTC(),
		ExpiresAt:   req.ExpiresAt,
	}

	if req.Custom != "" {
		link.Code = strings.ToLower(req.Custom)
		if isReserved(link.Code) {
			return model.ShortenResult{}, fmt.Errorf("create %q: %w", link.Code, model.ErrCodeTaken)
		}
		if err := s.repo.Create(link); err != nil {
			return model.ShortenResult{}, err
		}
		return s.result(link.Code), nil
	}

	for range maxAttempts {
		link.Code = s.gen(codeLength)
		if isReserved(link.Code) {
			continue
		}
		err := s.repo.Create(link)
		if errors.Is(err, model.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return model.ShortenResult{}, err
		}
		return s.result(link.Code), nil
	}

	return model.ShortenResult{}, fmt.Errorf("не удалось создать уникальную ссылку за %d попыток", maxAttempts)
}

// Resolve возвращает исходный адрес и записывает переход.
// Ошибка записи перехода не мешает редиректу.
func (s *LinkService) Resolve(code, remoteAddr, userAgent, country string) (string, error) {
	link, err := s.repo.Get(code)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	if link.Expired(now) {
		return "", fmt.Errorf("resolve %q: %w", code, model.ErrLinkExpired)
	}

	click := model.ClickEvent{
		ID:        uuid.NewString(),
		Code:      code,
		IPAddress: clientIP(remoteAddr),
		UserAgent: userAgent,
		Country:   country,
		ClickedAt: now,
	}
	if err := s.repo.AddClick(click); err != nil {
		s.log.Warn("не удалось сохранить переход", zap.String("code", code), zap.Error(err))
	}
	return link.OriginalURL, nil
}

// Analytics считает переходы, уникальные IP и переходы по странам.
// Пустая страна считается как Unknown.
func (s *LinkService) Analytics(code string) (model.AnalyticsResult, error) {
	link, err := s.repo.Get(code)
	if err != nil {
		return model.AnalyticsResult{}, err
	}
	clicks, err := s.repo.Clicks(code)
	if err != nil {
		return model.AnalyticsResult{}, err
	}

	res := model.AnalyticsResult{
		Code:            link.Code,
		OriginalURL:     link.OriginalURL,
		TotalClicks:     int64(len(clicks)),
		ClicksByCountry: map[string]int64{},
	}
	ips := make(map[string]struct{}, len(clicks))
	for _, c := range clicks {
		ips[c.IPAddress] = struct{}{}
		country := c.Country
		if country == "" {
			country = UnknownCountry
		}
		res.ClicksByCountry[country]++
	}
	res.UniqueIPs = int64(len(ips))
	return res, nil
}

// QR PNG с QR-кодом короткой ссылки
func (s *LinkService) QR(code string) ([]byte, error) {
	if _, err := s.repo.Get(code); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(s.ShortURL(code), qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("qr %q: %w", code, err)
	}
	return png, nil
}

func (s *LinkService) result(code string) model.ShortenResult {
	return model.ShortenResult{ShortURL: s.ShortURL(code), Code: code}
}

// generateCode создает случайный код
func generateCode(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	var result strings.Builder
	l := len(charset)

	for range length {
		result.WriteByte(charset[rand.IntN(l)])
	}

	return result.String()
}

func isReserved(code string) bool {
	_, ok := reservedCodes[code]
	return ok
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
