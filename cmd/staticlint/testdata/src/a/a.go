package a

import (
	"net/http"
	"time"
)

func bad() {
	http.Get("http://example.com")                 // want `http.Get без таймаута`
	http.Post("http://example.com", "text/plain", nil) // want `http.Post без таймаута`
	_ = http.DefaultClient                          // want `http.DefaultClient без таймаута`
}

func good() {
	c := &http.Client{Timeout: time.Second}
	c.Get("http://example.com")
	http.NewRequest(http.MethodGet, "http://example.com", nil)
}
