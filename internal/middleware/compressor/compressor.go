package compressor

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/Popolzen/shortlink/internal/pool"
	"github.com/gin-gonic/gin"
)

var writers = pool.New(
	func() *gzip.Writer { return gzip.NewWriter(io.Discard) },
	func(w *gzip.Writer) { w.Reset(io.Discard) },
)

type gzipWriter struct {
	gin.ResponseWriter
	writer     *gzip.Writer
	compressed bool
}

// compressible JSON и HTML сжимаются, PNG и прочее отдаётся как есть
func compressible(contentType string) bool {
	return strings.Contains(contentType, "application/json") || strings.Contains(contentType, "text/html")
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	if !g.compressed && compressible(g.Header().Get("Content-Type")) {
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Del("Content-Length")
		g.compressed = true
	}
	if g.compressed {
		return g.writer.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// Close дописывает gzip поток, только если он был начат
func (g *gzipWriter) Close() error {
	if g.compressed {
		return g.writer.Close()
	}
	return nil
}

// Compresser обрабатывает gzip сжатие
func Compresser() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Распаковка входящего запроса
		if strings.Contains(strings.ToLower(c.Request.Header.Get("Content-Encoding")), "gzip") {
			newReader, err := gzip.NewReader(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid gzip body"})
				return
			}
			c.Request.Body = newReader
			defer newReader.Close()
		}

		// 2. Подготовка сжатия ответа
		if !strings.Contains(strings.ToLower(c.Request.Header.Get("Accept-Encoding")), "gzip") {
			c.Next()
			return
		}

		gz := writers.Get()
		gz.Reset(c.Writer)
		gzipResp := &gzipWriter{ResponseWriter: c.Writer, writer: gz}
		c.Writer = gzipResp
		c.Header("Vary", "Accept-Encoding")
		defer func() {
			gzipResp.Close()
			writers.Put(gz)
		}()

		c.Next()
	}
}
