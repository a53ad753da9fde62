package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Popolzen/shortlink/internal/model"
	"github.com/dustin/go-humanize"
)

// render печатает итог: короткую ссылку, аналитику, QR и ошибки операций
func render(w io.Writer, snap model.Snapshot) {
	if l := snap.ShortLink; l != nil {
		fmt.Fprintf(w, "Short link: %s (code %s)\n", l.URL, l.Code)
	}

	if a := snap.Analytics.Result; a != nil {
		fmt.Fprintf(w, "Original URL: %s\n", a.OriginalURL)
		fmt.Fprintf(w, "Total clicks: %s\n", humanize.Comma(a.TotalClicks))
		fmt.Fprintf(w, "Unique IPs:   %s\n", humanize.Comma(a.UniqueIPs))
		if len(snap.CountryStats) > 0 {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COUNTRY\tCLICKS")
			for _, s := range snap.CountryStats {
				fmt.Fprintf(tw, "%s\t%s\n", s.Country, humanize.Comma(s.Clicks))
			}
			tw.Flush()
		}
	}

	if q := snap.QR.Result; q != nil {
		fmt.Fprintf(w, "QR code: %s, %s\n", q.MediaType, humanize.Bytes(uint64(len(q.Data))))
	}

	for _, e := range []struct {
		op  model.Operation
		msg string
	}{
		{model.OpShorten, snap.Shorten.Error},
		{model.OpAnalytics, snap.Analytics.Error},
		{model.OpQR, snap.QR.Error},
	} {
		if e.msg != "" {
			fmt.Fprintf(w, "%s failed: %s\n", e.op, e.msg)
		}
	}
}
