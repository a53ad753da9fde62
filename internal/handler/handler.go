package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/service/shortener"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CountryHeader двухбуквенный код страны клиента, его ставит прокси перед API
const CountryHeader = "X-Country-Code"

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// ShortenHandler создает короткую ссылку
func ShortenHandler(svc *shortener.LinkService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ShortenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithMessage(c, http.StatusBadRequest, "invalid JSON")
			return
		}

		res, err := svc.Shorten(req)
		var verr *model.ValidationError
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, res)
		case errors.As(err, &verr):
			abortWithMessage(c, http.StatusBadRequest, verr.Error())
		case errors.Is(err, model.ErrCodeTaken):
			abortWithMessage(c, http.StatusConflict, model.ErrCodeTaken.Error())
		default:
			log.Error("shorten failed", zap.Error(err))
			abortWithMessage(c, http.StatusInternalServerError, "internal error")
		}
	}
}

// AnalyticsHandler статистика переходов по ?code=
func AnalyticsHandler(svc *shortener.LinkService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := queryCode(c)
		if !ok {
			return
		}

		res, err := svc.Analytics(code)
		if err != nil {
			lookupFailed(c, log, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// QRHandler PNG с QR-кодом короткой ссылки по ?code=
func QRHandler(svc *shortener.LinkService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, ok := queryCode(c)
		if !ok {
			return
		}

		png, err := svc.QR(code)
		if err != nil {
			lookupFailed(c, log, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}

// RedirectHandler перенаправляет по короткой ссылке и записывает переход
func RedirectHandler(svc *shortener.LinkService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		url, err := svc.Resolve(code, c.Request.RemoteAddr, c.Request.UserAgent(), country(c))
		if err != nil {
			lookupFailed(c, log, err)
			return
		}
		c.Redirect(http.StatusFound, url)
	}
}

func queryCode(c *gin.Context) (string, bool) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		abortWithMessage(c, http.StatusBadRequest, "code is required")
		return "", false
	}
	return code, true
}

func lookupFailed(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		abortWithMessage(c, http.StatusNotFound, model.ErrNotFound.Error())
	case errors.Is(err, model.ErrLinkExpired):
		abortWithMessage(c, http.StatusGone, model.ErrLinkExpired.Error())
	default:
		log.Error("lookup failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abortWithMessage(c, http.StatusInternalServerError, "internal error")
	}
}

func country(c *gin.Context) string {
	cc := strings.ToUpper(strings.TrimSpace(c.GetHeader(CountryHeader)))
	if len(cc) != 2 {
		return ""
	}
	return cc
}
