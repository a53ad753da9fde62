package orchestrator

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/gabriel-vasile/mimetype"
)

// decodeQR проверяет, что байты — изображение, и строит data URI
func decodeQR(data []byte) (*model.QRImage, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", model.ErrQRDecode, mtype.String())
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrQRDecode, err)
	}

	return &model.QRImage{
		Data:      data,
		MediaType: mtype.String(),
		DataURI:   "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
