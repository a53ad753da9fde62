package a

import "net/http"

func helper() {
	http.Get("http://example.com")
}
