package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Popolzen/shortlink/internal/gateway"
	"github.com/Popolzen/shortlink/internal/model"
)

const (
	MsgUnreachable = "Unable to reach the API. Is the server running?"
	MsgQRDecode    = "Failed to decode QR code image."
	MsgUnexpected  = "An unexpected error occurred."
)

// NormalizeError превращает любую ошибку операции в одну строку для пользователя
func NormalizeError(err error) string {
	if errors.Is(err, model.ErrQRDecode) {
		return MsgQRDecode
	}

	var te *gateway.TransportError
	if !errors.As(err, &te) {
		return MsgUnexpected
	}

	switch {
	case strings.TrimSpace(te.Text) != "":
		return te.Text
	case te.Message != "":
		return te.Message
	case te.Status == 0:
		return MsgUnreachable
	default:
		return fmt.Sprintf("Request failed with status %d.", te.Status)
	}
}
