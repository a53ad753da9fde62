package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/imroc/req/v3"
	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "shortlink-client"

	requestIDHeader = "X-Request-ID"
)

// HTTPGateway ходит в API по HTTP
type HTTPGateway struct {
	client *req.Client
	log    *zap.Logger
}

// Option настройка HTTPGateway
type Option func(*HTTPGateway)

// WithTimeout ограничивает время одного запроса
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGateway) {
		if d > 0 {
			g.client.SetTimeout(d)
		}
	}
}

// WithUserAgent задаёт User-Agent
func WithUserAgent(ua string) Option {
	return func(g *HTTPGateway) {
		if ua != "" {
			g.client.SetUserAgent(ua)
		}
	}
}

// WithLogger задаёт логгер
func WithLogger(l *zap.Logger) Option {
	return func(g *HTTPGateway) {
		if l != nil {
			g.log = l
		}
	}
}

// NewHTTPGateway создаёт шлюз к API по адресу apiURL
func NewHTTPGateway(apiURL string, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		client: req.C().
			SetBaseURL(strings.TrimSuffix(apiURL, "/")).
			SetTimeout(DefaultTimeout).
			SetUserAgent(DefaultUserAgent).
			SetCommonHeader("Accept", "application/json"),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Shorten POST /shorten
func (g *HTTPGateway) Shorten(ctx context.Context, sr model.ShortenRequest) (*model.ShortenResult, error) {
	body, status, err := g.do(ctx, "shorten", "POST", "/shorten", func(r *req.Request) {
		r.SetBodyJsonMarshal(&sr)
	})
	if err != nil {
		return nil, err
	}

	var out model.ShortenResult
	if err := decodeJSON(status, body, &out); err != nil {
		return nil, err
	}
	if out.Code == "" {
		return nil, fmt.Errorf("shorten: %w", model.ErrMissingCode)
	}
	return &out, nil
}

// FetchAnalytics GET /analytics?code=
func (g *HTTPGateway) FetchAnalytics(ctx context.Context, code string) (*model.AnalyticsResult, error) {
	body, status, err := g.do(ctx, "analytics", "GET", "/analytics", func(r *req.Request) {
		r.SetQueryParam("code", code)
	})
	if err != nil {
		return nil, err
	}

	var out model.AnalyticsResult
	if err := decodeJSON(status, body, &out); err != nil {
		return nil, err
	}
	if out.ClicksByCountry == nil {
		out.ClicksByCountry = map[string]int64{}
	}
	return &out, nil
}

// FetchQR GET /qr?code=, возвращает тело ответа как есть
func (g *HTTPGateway) FetchQR(ctx context.Context, code string) ([]byte, error) {
	body, _, err := g.do(ctx, "qr", "GET", "/qr", func(r *req.Request) {
		r.SetQueryParam("code", code).SetHeader("Accept", "image/png,image/*")
	})
	return body, err
}

// do выполняет запрос и возвращает тело и статус успешного ответа
func (g *HTTPGateway) do(ctx context.Context, op, method, path string, build func(*req.Request)) ([]byte, int, error) {
	id := shortuuid.New()
	r := g.client.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, id)
	build(r)

	start := time.Now()
	resp, err := r.Send(method, path)
	status := 0
	if resp != nil {
		status = resp.GetStatusCode()
	}

	g.log.Debug("api call",
		zap.String("op", op),
		zap.String("id", id),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if err != nil {
		g.log.Warn("api unreachable", zap.String("op", op), zap.String("id", id), zap.Error(err))
		return nil, status, &TransportError{Status: status, Err: err}
	}

	body, err := resp.ToBytes()
	if err != nil {
		return nil, status, &TransportError{Status: status, Err: err}
	}

	if !resp.IsSuccessState() {
		g.log.Warn("api error", zap.String("op", op), zap.String("id", id), zap.Int("status", status))
		return nil, status, errorFromBody(status, body)
	}
	return body, status, nil
}

// errorFromBody разбирает тело ответа с ошибкой: JSON с полем message,
// JSON строка или просто текст
func errorFromBody(status int, body []byte) *TransportError {
	te := &TransportError{Status: status}

	var structured struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		te.Message = structured.Message
		return te
	}

	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		te.Text = strings.TrimSpace(text)
		return te
	}

	te.Text = strings.TrimSpace(string(body))
	return te
}

// decodeJSON успешный статус с неразборчивым телом считается ошибкой транспорта с этим статусом
func decodeJSON(status int, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &TransportError{Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
