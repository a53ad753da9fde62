// Command shortlink клиент сокращателя ссылок.
//
//	shortlink shorten -url URL [-custom ALIAS] [-expires RFC3339 | -ttl DUR] [-qr-out FILE]
//	shortlink analytics -code CODE [-qr-out FILE]
//
// Общие флаги: -api, -base, -timeout, -log-level, -log-file, -state-log,
// -notify-url, -stale-guard, -c/-config. Те же параметры читаются из
// окружения (API_URL, BASE_URL, ...) и из .env.
//
// Код выхода 2 при ошибке ввода, 1 если хотя бы одна операция завершилась ошибкой.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Popolzen/shortlink/internal/config"
	"github.com/Popolzen/shortlink/internal/gateway"
	"github.com/Popolzen/shortlink/internal/logger"
	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/notify"
	"github.com/Popolzen/shortlink/internal/service/orchestrator"
	"go.uber.org/zap"
)

const (
	exitOK = iota
	exitFailed
	exitUsage
)

const usage = `usage:
  shortlink shorten -url URL [-custom ALIAS] [-expires RFC3339 | -ttl DURATION] [-qr-out FILE]
  shortlink analytics -code CODE [-qr-out FILE]

run "shortlink <command> -h" for all flags
`

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// command собранная из аргументов операция
type command struct {
	name  string
	qrOut string
	start func(ctx context.Context, o *orchestrator.Orchestrator)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet("shortlink "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var build func() (command, error)
	switch name {
	case "shorten":
		build = shortenFlags(fs)
	case "analytics":
		build = analyticsFlags(fs)
	case "version":
		printBuildInfo(stdout)
		return exitOK
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return exitUsage
	}

	cfg, err := config.Load(fs, rest)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	cmd, err := build()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer logger.Close()
	log := logger.L()

	pub := initNotify(cfg, stderr, log)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn("не удалось закрыть наблюдателей", zap.Error(err))
		}
	}()

	gw := gateway.NewHTTPGateway(cfg.APIURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithUserAgent(cfg.UserAgent),
		gateway.WithLogger(log),
	)
	o := orchestrator.New(gw, cfg.GetBaseURL(),
		orchestrator.WithLogger(log),
		orchestrator.WithPublisher(pub),
		orchestrator.WithStaleGuard(cfg.StaleGuard),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.start(ctx, o)
	o.Wait()

	snap := o.Snapshot()
	render(stdout, snap)

	if cmd.qrOut != "" && snap.QR.Result != nil {
		if err := os.WriteFile(cmd.qrOut, snap.QR.Result.Data, 0o644); err != nil {
			fmt.Fprintf(stderr, "write qr: %v\n", err)
			return exitFailed
		}
		fmt.Fprintf(stdout, "QR saved to %s\n", cmd.qrOut)
	}

	if failed(snap.State) {
		return exitFailed
	}
	return exitOK
}

func shortenFlags(fs *flag.FlagSet) func() (command, error) {
	url := fs.String("url", "", "long URL to shorten (http:// or https://)")
	custom := fs.String("custom", "", "custom alias, 3-16 characters")
	expires := fs.String("expires", "", "expiry time, RFC 3339")
	ttl := fs.Duration("ttl", 0, "expiry relative to now, e.g. 24h")
	qrOut := fs.String("qr-out", "", "write QR PNG to file")

	return func() (command, error) {
		expiresAt, err := parseExpiry(*expires, *ttl, time.Now())
		if err != nil {
			return command{}, err
		}
		req, err := model.NewShortenRequest(*url, *custom, expiresAt)
		if err != nil {
			return command{}, err
		}
		return command{
			name:  "shorten",
			qrOut: *qrOut,
			start: func(ctx context.Context, o *orchestrator.Orchestrator) {
				o.Shorten(ctx, req)
			},
		}, nil
	}
}

func analyticsFlags(fs *flag.FlagSet) func() (command, error) {
	code := fs.String("code", "", "short code")
	qrOut := fs.String("qr-out", "", "write QR PNG to file")

	return func() (command, error) {
		c, err := model.ValidateCode(*code)
		if err != nil {
			return command{}, err
		}
		return command{
			name:  "analytics",
			qrOut: *qrOut,
			start: func(ctx context.Context, o *orchestrator.Orchestrator) {
				o.FetchAnalytics(ctx, c)
				o.FetchQR(ctx, c)
			},
		}, nil
	}
}

// parseExpiry -expires и -ttl взаимоисключающие
func parseExpiry(expires string, ttl time.Duration, now time.Time) (*time.Time, error) {
	switch {
	case expires != "" && ttl != 0:
		return nil, errors.New("use either -expires or -ttl, not both")
	case expires != "":
		t, err := time.Parse(time.RFC3339, expires)
		if err != nil {
			return nil, fmt.Errorf("expires must be RFC 3339, e.g. 2026-01-02T15:04:05Z: %w", err)
		}
		return &t, nil
	case ttl < 0:
		return nil, errors.New("ttl must be positive")
	case ttl > 0:
		t := now.Add(ttl)
		return &t, nil
	default:
		return nil, nil
	}
}

// initNotify печатает ход операций в stderr и подключает наблюдателей из конфигурации
func initNotify(cfg *config.Config, progress io.Writer, log *zap.Logger) *notify.Publisher {
	pub := notify.NewPublisher()
	pub.Subscribe(notify.ObserverFunc(func(e notify.Event) {
		fmt.Fprintf(progress, "%-9s %s\n", e.Operation, e.Phase)
	}))

	if cfg.StateLog != "" {
		fileObs, err := notify.NewFileObserver(cfg.StateLog, log)
		if err != nil {
			log.Warn("не удалось создать file observer", zap.Error(err))
		} else {
			pub.Subscribe(fileObs)
		}
	}
	if cfg.NotifyURL != "" {
		pub.Subscribe(notify.NewHTTPObserver(cfg.NotifyURL, log))
	}
	return pub
}

func failed(st model.State) bool {
	return st.Shorten.Error != "" || st.Analytics.Error != "" || st.QR.Error != ""
}

func printBuildInfo(w io.Writer) {
	version, date, commit := "N/A", "N/A", "N/A"
	if buildVersion != "" {
		version = buildVersion
	}
	if buildDate != "" {
		date = buildDate
	}
	if buildCommit != "" {
		commit = buildCommit
	}

	fmt.Fprintf(w, "Build version: %s\n", version)
	fmt.Fprintf(w, "Build date: %s\n", date)
	fmt.Fprintf(w, "Build commit: %s\n", commit)
}
