// Package gateway описывает обращения клиента к API сокращателя ссылок.
package gateway

import (
	"context"
	"fmt"

	"github.com/Popolzen/shortlink/internal/model"
)

//go:generate mockgen -source=gateway.go -destination=mocks/gateway_mock.go -package=mocks

// Gateway три удалённых вызова API. Каждый вызов выполняется ровно один раз,
// при ошибке транспорта возвращается *TransportError.
type Gateway interface {
	Shorten(ctx context.Context, req model.ShortenRequest) (*model.ShortenResult, error)
	FetchAnalytics(ctx context.Context, code string) (*model.AnalyticsResult, error)
	FetchQR(ctx context.Context, code string) ([]byte, error)
}

// TransportError ошибка сетевого или HTTP уровня.
// Status 0 означает, что до сервера достучаться не удалось.
type TransportError struct {
	Status int
	// Text текстовое тело ответа, если оно не JSON
	Text string
	// Message поле message из JSON тела ответа
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("transport: server unreachable: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport: status %d: %v", e.Status, e.Err)
	case e.Text != "":
		return fmt.Sprintf("transport: status %d: %s", e.Status, e.Text)
	case e.Message != "":
		return fmt.Sprintf("transport: status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("transport: status %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
