package orchestrator_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/Popolzen/shortlink/internal/gateway"
	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/service/orchestrator"
)

func ExampleOrchestrator_FetchAnalytics() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("code") {
		case "abc123":
			fmt.Fprint(w, `{"code":"abc123","original_url":"https://example.com","total_clicks":3,"unique_ips":2,"clicks_by_country":{"US":1,"UK":2}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	o := orchestrator.New(gateway.NewHTTPGateway(srv.URL), "https://sho.rt")

	o.FetchAnalytics(context.Background(), "abc123")
	o.Wait()

	fmt.Println(o.DisplayedShortLink().URL)
	for _, s := range o.CountryStats() {
		fmt.Println(s.Country, s.Clicks)
	}

	o.FetchAnalytics(context.Background(), "missing")
	o.Wait()

	st := o.State()
	fmt.Println(st.Analytics.Error)
	fmt.Println(st.Analytics.Result == nil)

	// Output:
	// https://sho.rt/abc123
	// UK 2
	// US 1
	// Request failed with status 404.
	// true
}

func ExampleNormalizeError() {
	fmt.Println(orchestrator.NormalizeError(&gateway.TransportError{Status: 0}))
	fmt.Println(orchestrator.NormalizeError(&gateway.TransportError{Status: 409, Text: "code already exists"}))
	fmt.Println(orchestrator.NormalizeError(model.ErrQRDecode))

	// Output:
	// Unable to reach the API. Is the server running?
	// code already exists
	// Failed to decode QR code image.
}
