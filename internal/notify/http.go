package notify

import (
	"time"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"
)

// HTTPObserver отправляет события POST-запросом на webhook.
// Ошибки доставки только логируются.
type HTTPObserver struct {
	url    string
	client *req.Client
	log    *zap.Logger
}

func NewHTTPObserver(url string, log *zap.Logger) *HTTPObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPObserver{
		url:    url,
		client: req.C().SetTimeout(5 * time.Second),
		log:    log,
	}
}

func (h *HTTPObserver) Notify(event Event) {
	resp, err := h.client.R().SetBodyJsonMarshal(event).Post(h.url)
	if err != nil {
		h.log.Warn("notify http: ошибка отправки", zap.String("url", h.url), zap.Error(err))
		return
	}

	if resp.GetStatusCode() >= 400 {
		h.log.Warn("notify http: сервер вернул ошибку", zap.String("url", h.url), zap.Int("status", resp.GetStatusCode()))
	}
}

func (h *HTTPObserver) Close() error {
	return nil
}
