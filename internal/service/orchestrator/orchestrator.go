// Package orchestrator хранит состояние клиента сокращателя ссылок и
// координирует три операции: сокращение, аналитику и QR-код.
//
// Каждая операция сразу переводит свой слот в состояние загрузки и
// выполняет вызов шлюза в отдельной горутине. Успешное сокращение
// само запускает загрузку аналитики и QR-кода по полученному коду.
//
// Повторные вызовы одной операции не объединяются: побеждает тот, кто
// завершился последним. Отменить начатую операцию нельзя, её завершение
// всегда изменит состояние. Если это нежелательно, включите WithStaleGuard,
// тогда завершения устаревших вызовов отбрасываются.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Popolzen/shortlink/internal/gateway"
	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/notify"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

var errNoResult = errors.New("gateway returned no result")

// Orchestrator состояние трёх операций клиента и их запуск
type Orchestrator struct {
	gw      gateway.Gateway
	baseURL string
	log     *zap.Logger
	pub     *notify.Publisher
	guard   bool

	mu     sync.Mutex
	state  model.State
	seq    map[model.Operation]uint64
	ticket uint64

	// события рассылаются строго в порядке выданных под mu билетов
	pubMu   sync.Mutex
	pubTurn *sync.Cond
	sent    uint64

	wg conc.WaitGroup
}

// Option настройка Orchestrator
type Option func(*Orchestrator)

// WithLogger задаёт логгер, по умолчанию zap.NewNop
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPublisher подключает внешний Publisher, например с файловым наблюдателем
func WithPublisher(p *notify.Publisher) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.pub = p
		}
	}
}

// WithStaleGuard отбрасывает завершения вызовов, после которых
// уже была запущена та же операция
func WithStaleGuard(on bool) Option {
	return func(o *Orchestrator) {
		o.guard = on
	}
}

// New создаёт оркестратор. baseURL нужен только для показа короткой
// ссылки, полученной из аналитики.
func New(gw gateway.Gateway, baseURL string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gw:      gw,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     zap.NewNop(),
		pub:     notify.NewPublisher(),
		seq:     make(map[model.Operation]uint64, 3),
	}
	o.pubTurn = sync.NewCond(&o.pubMu)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe подписывает наблюдателя на изменения состояния.
// Наблюдатель не должен синхронно вызывать операции оркестратора:
// такой вызов ждёт окончания текущей рассылки и не дождётся его.
// Паника наблюдателя не останавливает рассылку следующих событий.
func (o *Orchestrator) Subscribe(obs notify.Observer) {
	o.pub.Subscribe(obs)
}

// Shorten сокращает ссылку. Запрос должен быть уже проверен вызывающим.
func (o *Orchestrator) Shorten(ctx context.Context, req model.ShortenRequest) {
	seq := o.begin(model.OpShorten, func(s *model.State) {
		s.Shorten.Loading = true
		s.Shorten.Error = ""
	})

	o.wg.Go(func() {
		res, err := o.gw.Shorten(ctx, req)
		if err == nil && res == nil {
			err = errNoResult
		}

		if err != nil {
			o.log.Warn("shorten failed", zap.String("url", req.URL), zap.Error(err))
			// прошлый удачный результат остаётся для показа
			o.complete(model.OpShorten, notify.PhaseFailed, seq, func(s *model.State) {
				s.Shorten.Loading = false
				s.Shorten.Error = NormalizeError(err)
			})
			return
		}

		applied := o.complete(model.OpShorten, notify.PhaseSucceeded, seq, func(s *model.State) {
			s.Shorten.Loading = false
			s.Shorten.Result = res
			s.Shorten.Error = ""
		})
		if !applied {
			return
		}

		o.log.Info("shortened", zap.String("url", req.URL), zap.String("code", res.Code))
		o.FetchAnalytics(ctx, res.Code)
		o.FetchQR(ctx, res.Code)
	})
}

// FetchAnalytics загружает статистику по коду. Код не должен быть пустым.
func (o *Orchestrator) FetchAnalytics(ctx context.Context, code string) {
	seq := o.begin(model.OpAnalytics, func(s *model.State) {
		s.Analytics.Loading = true
		s.Analytics.Error = ""
	})

	o.wg.Go(func() {
		res, err := o.gw.FetchAnalytics(ctx, code)
		if err == nil && res == nil {
			err = errNoResult
		}

		if err != nil {
			o.log.Warn("analytics failed", zap.String("code", code), zap.Error(err))
			o.complete(model.OpAnalytics, notify.PhaseFailed, seq, func(s *model.State) {
				s.Analytics.Result = nil
				s.Analytics.Loading = false
				s.Analytics.Error = NormalizeError(err)
			})
			return
		}

		o.complete(model.OpAnalytics, notify.PhaseSucceeded, seq, func(s *model.State) {
			s.Analytics.Result = res
			s.Analytics.Loading = false
			s.Analytics.Error = ""
		})
	})
}

// FetchQR загружает QR-код по коду. Код не должен быть пустым.
func (o *Orchestrator) FetchQR(ctx context.Context, code string) {
	seq := o.begin(model.OpQR, func(s *model.State) {
		s.QR.Loading = true
		s.QR.Error = ""
	})

	o.wg.Go(func() {
		var img *model.QRImage
		data, err := o.gw.FetchQR(ctx, code)
		if err == nil {
			img, err = decodeQR(data)
		}

		if err != nil {
			o.log.Warn("qr failed", zap.String("code", code), zap.Error(err))
			o.complete(model.OpQR, notify.PhaseFailed, seq, func(s *model.State) {
				s.QR.Result = nil
				s.QR.Loading = false
				s.QR.Error = NormalizeError(err)
			})
			return
		}

		o.complete(model.OpQR, notify.PhaseSucceeded, seq, func(s *model.State) {
			s.QR.Result = img
			s.QR.Loading = false
			s.QR.Error = ""
		})
	})
}

// Wait ждёт завершения всех начатых операций, включая запущенные цепочкой
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// State возвращает копию текущего состояния
func (o *Orchestrator) State() model.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Snapshot возвращает копию состояния вместе с производными представлениями
func (o *Orchestrator) Snapshot() model.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// CountryStats переходы по странам из текущей аналитики
func (o *Orchestrator) CountryStats() []model.CountryStat {
	return o.Snapshot().CountryStats
}

// DisplayedShortLink короткая ссылка для показа: из результата сокращения,
// иначе собранная из аналитики, иначе nil
func (o *Orchestrator) DisplayedShortLink() *model.ShortLink {
	return o.Snapshot().ShortLink
}

func (o *Orchestrator) begin(op model.Operation, mutate func(*model.State)) uint64 {
	var seq uint64
	o.apply(op, notify.PhaseStarted, func(s *model.State) bool {
		o.seq[op]++
		seq = o.seq[op]
		mutate(s)
		return true
	})
	return seq
}

// complete применяет результат вызова seq. Возвращает false, если
// результат устарел и был отброшен.
func (o *Orchestrator) complete(op model.Operation, phase notify.Phase, seq uint64, mutate func(*model.State)) bool {
	return o.apply(op, phase, func(s *model.State) bool {
		if o.guard && o.seq[op] != seq {
			o.log.Debug("stale completion dropped", zap.String("op", string(op)), zap.Uint64("seq", seq))
			return false
		}
		mutate(s)
		return true
	})
}

func (o *Orchestrator) apply(op model.Operation, phase notify.Phase, mutate func(*model.State) bool) bool {
	o.mu.Lock()
	if !mutate(&o.state) {
		o.mu.Unlock()
		return false
	}
	snap := o.snapshotLocked()
	o.ticket++
	ticket := o.ticket
	o.mu.Unlock()

	o.pubMu.Lock()
	defer o.pubMu.Unlock()
	for o.sent+1 != ticket {
		o.pubTurn.Wait()
	}
	// очередь событий двигается, даже если публикация упала
	defer func() {
		o.sent = ticket
		o.pubTurn.Broadcast()
	}()
	if err := o.pub.Publish(notify.NewEvent(op, phase, snap)); err != nil {
		o.log.Error("observer failed", zap.String("op", string(op)), zap.Error(err))
	}
	return true
}

func (o *Orchestrator) snapshotLocked() model.Snapshot {
	st := o.state.Clone()
	return model.Snapshot{
		State:        st,
		CountryStats: model.CountryStats(st.Analytics.Result),
		ShortLink:    displayedShortLink(st, o.baseURL),
	}
}

func displayedShortLink(st model.State, baseURL string) *model.ShortLink {
	if r := st.Shorten.Result; r != nil {
		return &model.ShortLink{URL: r.ShortURL, Code: r.Code}
	}
	if a := st.Analytics.Result; a != nil {
		return &model.ShortLink{URL: baseURL + "/" + a.Code, Code: a.Code}
	}
	return nil
}
