package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Popolzen/shortlink/internal/gateway"
	"github.com/Popolzen/shortlink/internal/gateway/mocks"
	"github.com/Popolzen/shortlink/internal/model"
	"github.com/Popolzen/shortlink/internal/notify"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testBaseURL = "https://sho.rt/"

func qrPNG(t *testing.T) []byte {
	t.Helper()
	png, err := qrcode.Encode("https://sho.rt/abc123", qrcode.Medium, 64)
	require.NoError(t, err)
	return png
}

func analyticsFor(code string) *model.AnalyticsResult {
	return &model.AnalyticsResult{
		Code:            code,
		OriginalURL:     "https://example.com",
		TotalClicks:     20,
		UniqueIPs:       7,
		ClicksByCountry: map[string]int64{"US": 5, "CA": 5, "UK": 10},
	}
}

// eventRecorder собирает события для проверок
type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Notify(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) Close() error { return nil }

func (r *eventRecorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// === Shorten ===

func TestShorten_SuccessChainsAnalyticsAndQR(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	req := model.ShortenRequest{URL: "https://example.com"}

	gw.EXPECT().Shorten(gomock.Any(), req).
		Return(&model.ShortenResult{ShortURL: "https://sho.rt/abc123", Code: "abc123"}, nil)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil).Times(1)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(qrPNG(t), nil).Times(1)

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), req)
	o.Wait()

	st := o.State()
	require.NotNil(t, st.Shorten.Result)
	assert.Equal(t, model.ShortenResult{ShortURL: "https://sho.rt/abc123", Code: "abc123"}, *st.Shorten.Result)
	assert.False(t, st.Shorten.Loading)
	assert.Empty(t, st.Shorten.Error)

	require.NotNil(t, st.Analytics.Result)
	assert.Equal(t, "abc123", st.Analytics.Result.Code)
	assert.False(t, st.Analytics.Loading)

	require.NotNil(t, st.QR.Result)
	assert.Equal(t, "image/png", st.QR.Result.MediaType)
	assert.True(t, strings.HasPrefix(st.QR.Result.DataURI, "data:image/png;base64,"))
	assert.False(t, st.QR.Loading)
}

func TestShorten_FailureKeepsPreviousResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	first := model.ShortenRequest{URL: "https://one.com"}
	second := model.ShortenRequest{URL: "https://two.com", Custom: "taken"}

	gw.EXPECT().Shorten(gomock.Any(), first).Return(&model.ShortenResult{ShortURL: "https://sho.rt/one", Code: "one"}, nil)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "one").Return(analyticsFor("one"), nil)
	gw.EXPECT().FetchQR(gomock.Any(), "one").Return(qrPNG(t), nil)
	gw.EXPECT().Shorten(gomock.Any(), second).Return(nil, &gateway.TransportError{Status: 409, Text: "code already exists"})

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), first)
	o.Wait()
	o.Shorten(context.Background(), second)
	o.Wait()

	st := o.State()
	assert.Equal(t, "code already exists", st.Shorten.Error)
	assert.False(t, st.Shorten.Loading)
	require.NotNil(t, st.Shorten.Result)
	assert.Equal(t, "one", st.Shorten.Result.Code)
}

func TestShorten_FailureDoesNotChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(nil, &gateway.TransportError{Status: 0, Err: errors.New("dial tcp: refused")})

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
	o.Wait()

	st := o.State()
	assert.Equal(t, MsgUnreachable, st.Shorten.Error)
	assert.Nil(t, st.Shorten.Result)
	assert.Nil(t, st.Analytics.Result)
	assert.Nil(t, st.QR.Result)
	assert.False(t, st.Analytics.Loading)
	assert.False(t, st.QR.Loading)
}

func TestShorten_LoadingWhileInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	release := make(chan struct{})

	gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, model.ShortenRequest) (*model.ShortenResult, error) {
			<-release
			return nil, &gateway.TransportError{Status: 500}
		})

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})

	st := o.State()
	assert.True(t, st.Shorten.Loading)
	assert.Empty(t, st.Shorten.Error)

	close(release)
	o.Wait()

	st = o.State()
	assert.False(t, st.Shorten.Loading)
	assert.Equal(t, "Request failed with status 500.", st.Shorten.Error)
}

func TestShorten_StartClearsPreviousError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	release := make(chan struct{})

	gomock.InOrder(
		gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(nil, &gateway.TransportError{Status: 502}),
		gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, model.ShortenRequest) (*model.ShortenResult, error) {
				<-release
				return nil, &gateway.TransportError{Status: 503}
			}),
	)

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
	o.Wait()
	require.Equal(t, "Request failed with status 502.", o.State().Shorten.Error)

	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
	assert.Empty(t, o.State().Shorten.Error)

	close(release)
	o.Wait()
	assert.Equal(t, "Request failed with status 503.", o.State().Shorten.Error)
}

func TestShorten_NilResultIsUnexpected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(nil, nil)

	o := New(gw, testBaseURL)
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
	o.Wait()

	assert.Equal(t, MsgUnexpected, o.State().Shorten.Error)
}

// === Analytics ===

func TestFetchAnalytics_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "zzz").Return(nil, &gateway.TransportError{Status: 404})

	o := New(gw, testBaseURL)
	o.FetchAnalytics(context.Background(), "zzz")
	o.Wait()

	st := o.State()
	assert.Equal(t, "Request failed with status 404.", st.Analytics.Error)
	assert.Nil(t, st.Analytics.Result)
	assert.False(t, st.Analytics.Loading)
}

func TestFetchAnalytics_FailureClearsPreviousResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "gone").Return(nil, &gateway.TransportError{Status: 404, Message: "short url not found"})

	o := New(gw, testBaseURL)
	o.FetchAnalytics(context.Background(), "abc123")
	o.Wait()
	require.NotNil(t, o.State().Analytics.Result)

	o.FetchAnalytics(context.Background(), "gone")
	o.Wait()

	st := o.State()
	assert.Nil(t, st.Analytics.Result)
	assert.Equal(t, "short url not found", st.Analytics.Error)
	assert.Empty(t, o.CountryStats())
}

func TestFetchAnalytics_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil).Times(3)

	once := New(gw, testBaseURL)
	once.FetchAnalytics(context.Background(), "abc123")
	once.Wait()

	twice := New(gw, testBaseURL)
	twice.FetchAnalytics(context.Background(), "abc123")
	twice.Wait()
	twice.FetchAnalytics(context.Background(), "abc123")
	twice.Wait()

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestFetchAnalytics_CountryStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil)

	o := New(gw, testBaseURL)
	assert.Empty(t, o.CountryStats())

	o.FetchAnalytics(context.Background(), "abc123")
	o.Wait()

	assert.Equal(t, []model.CountryStat{
		{Country: "UK", Clicks: 10},
		{Country: "CA", Clicks: 5},
		{Country: "US", Clicks: 5},
	}, o.CountryStats())
}

// === QR ===

func TestFetchQR_UndecodableImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return([]byte("definitely not a png"), nil)

	o := New(gw, testBaseURL)
	o.FetchQR(context.Background(), "abc123")
	o.Wait()

	st := o.State()
	assert.Equal(t, "Failed to decode QR code image.", st.QR.Error)
	assert.Nil(t, st.QR.Result)
	assert.False(t, st.QR.Loading)
}

func TestFetchQR_TruncatedPNG(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	png := qrPNG(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(png[:12], nil)

	o := New(gw, testBaseURL)
	o.FetchQR(context.Background(), "abc123")
	o.Wait()

	assert.Equal(t, MsgQRDecode, o.State().QR.Error)
}

func TestFetchQR_TransportFailureClearsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(qrPNG(t), nil)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(nil, &gateway.TransportError{Status: 500, Text: "failed to generate qr"})

	o := New(gw, testBaseURL)
	o.FetchQR(context.Background(), "abc123")
	o.Wait()
	require.NotNil(t, o.State().QR.Result)

	o.FetchQR(context.Background(), "abc123")
	o.Wait()

	st := o.State()
	assert.Nil(t, st.QR.Result)
	assert.Equal(t, "failed to generate qr", st.QR.Error)
}

func TestFetchQR_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	png := qrPNG(t)
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(png, nil)

	o := New(gw, testBaseURL)
	o.FetchQR(context.Background(), "abc123")
	o.Wait()

	st := o.State()
	require.NotNil(t, st.QR.Result)
	assert.Equal(t, png, st.QR.Result.Data)
	assert.Empty(t, st.QR.Error)
}

// === Производные представления ===

func TestDisplayedShortLink(t *testing.T) {
	t.Run("Нет результатов", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		o := New(mocks.NewMockGateway(ctrl), testBaseURL)

		assert.Nil(t, o.DisplayedShortLink())
	})

	t.Run("Только аналитика", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)
		gw.EXPECT().FetchAnalytics(gomock.Any(), "xyz").Return(analyticsFor("xyz"), nil)

		o := New(gw, testBaseURL)
		o.FetchAnalytics(context.Background(), "xyz")
		o.Wait()

		assert.Equal(t, &model.ShortLink{URL: "https://sho.rt/xyz", Code: "xyz"}, o.DisplayedShortLink())
	})

	t.Run("Сокращение важнее аналитики", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockGateway(ctrl)
		gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(&model.ShortenResult{ShortURL: "https://custom.host/abc", Code: "abc"}, nil)
		gw.EXPECT().FetchAnalytics(gomock.Any(), "abc").Return(analyticsFor("abc"), nil)
		gw.EXPECT().FetchQR(gomock.Any(), "abc").Return(qrPNG(t), nil)
		gw.EXPECT().FetchAnalytics(gomock.Any(), "other").Return(analyticsFor("other"), nil)

		o := New(gw, testBaseURL)
		o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
		o.Wait()
		o.FetchAnalytics(context.Background(), "other")
		o.Wait()

		assert.Equal(t, &model.ShortLink{URL: "https://custom.host/abc", Code: "abc"}, o.DisplayedShortLink())
	})
}

// === События ===

func TestEvents_ShortenChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(&model.ShortenResult{ShortURL: "https://sho.rt/abc123", Code: "abc123"}, nil)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil)
	gw.EXPECT().FetchQR(gomock.Any(), "abc123").Return(qrPNG(t), nil)

	rec := &eventRecorder{}
	o := New(gw, testBaseURL)
	o.Subscribe(rec)

	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://example.com"})
	o.Wait()

	events := rec.all()
	require.Len(t, events, 6)

	assert.Equal(t, model.OpShorten, events[0].Operation)
	assert.Equal(t, notify.PhaseStarted, events[0].Phase)
	assert.True(t, events[0].State.Shorten.Loading)

	assert.Equal(t, model.OpShorten, events[1].Operation)
	assert.Equal(t, notify.PhaseSucceeded, events[1].Phase)
	assert.Equal(t, "abc123", events[1].State.ShortLink.Code)

	assert.Equal(t, model.OpAnalytics, events[2].Operation)
	assert.Equal(t, notify.PhaseStarted, events[2].Phase)
	assert.Equal(t, model.OpQR, events[3].Operation)
	assert.Equal(t, notify.PhaseStarted, events[3].Phase)

	for _, e := range events[4:] {
		assert.Equal(t, notify.PhaseSucceeded, e.Phase)
	}
	last := events[5].State
	assert.False(t, last.Analytics.Loading)
	assert.False(t, last.QR.Loading)
	assert.Len(t, last.CountryStats, 3)
}

func TestEvents_SnapshotIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := analyticsFor("abc123")
	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(res, nil)

	rec := &eventRecorder{}
	o := New(gw, testBaseURL)
	o.Subscribe(rec)
	o.FetchAnalytics(context.Background(), "abc123")
	o.Wait()

	events := rec.all()
	require.Len(t, events, 2)
	events[1].State.Analytics.Result.ClicksByCountry["US"] = 999

	assert.Equal(t, int64(5), o.State().Analytics.Result.ClicksByCountry["US"])
}

// === Гонки повторных вызовов ===

func raceAnalytics(t *testing.T, guard bool) (*Orchestrator, *eventRecorder) {
	t.Helper()
	ctrl := gomock.NewController(t)

	gw := mocks.NewMockGateway(ctrl)
	releaseOld := make(chan struct{})
	newDone := make(chan struct{})

	gw.EXPECT().FetchAnalytics(gomock.Any(), "old").
		DoAndReturn(func(context.Context, string) (*model.AnalyticsResult, error) {
			<-releaseOld
			return analyticsFor("old"), nil
		})
	gw.EXPECT().FetchAnalytics(gomock.Any(), "new").Return(analyticsFor("new"), nil)

	rec := &eventRecorder{}
	o := New(gw, testBaseURL, WithStaleGuard(guard))
	o.Subscribe(rec)
	o.Subscribe(notify.ObserverFunc(func(e notify.Event) {
		if e.Operation == model.OpAnalytics && e.Phase == notify.PhaseSucceeded &&
			e.State.Analytics.Result.Code == "new" {
			close(newDone)
		}
	}))

	o.FetchAnalytics(context.Background(), "old")
	o.FetchAnalytics(context.Background(), "new")

	select {
	case <-newDone:
	case <-time.After(5 * time.Second):
		t.Fatal("второй вызов не завершился")
	}
	close(releaseOld)
	o.Wait()
	return o, rec
}

func TestConcurrentCalls_LastWriterWins(t *testing.T) {
	o, rec := raceAnalytics(t, false)

	st := o.State()
	require.NotNil(t, st.Analytics.Result)
	assert.Equal(t, "old", st.Analytics.Result.Code, "позднее завершение перезаписывает новый результат")
	assert.Len(t, rec.all(), 4)
}

func TestConcurrentCalls_StaleGuard(t *testing.T) {
	o, rec := raceAnalytics(t, true)

	st := o.State()
	require.NotNil(t, st.Analytics.Result)
	assert.Equal(t, "new", st.Analytics.Result.Code)
	assert.False(t, st.Analytics.Loading)
	assert.Len(t, rec.all(), 3, "устаревшее завершение не публикуется")
}

func TestStaleGuard_DroppedShortenDoesNotChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	releaseOld := make(chan struct{})

	gw.EXPECT().Shorten(gomock.Any(), model.ShortenRequest{URL: "https://old.com"}).
		DoAndReturn(func(context.Context, model.ShortenRequest) (*model.ShortenResult, error) {
			<-releaseOld
			return &model.ShortenResult{ShortURL: "https://sho.rt/old", Code: "old"}, nil
		})
	gw.EXPECT().Shorten(gomock.Any(), model.ShortenRequest{URL: "https://new.com"}).
		Return(&model.ShortenResult{ShortURL: "https://sho.rt/new", Code: "new"}, nil)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "new").Return(analyticsFor("new"), nil)
	gw.EXPECT().FetchQR(gomock.Any(), "new").Return(qrPNG(t), nil)

	o := New(gw, testBaseURL, WithStaleGuard(true))
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://old.com"})
	o.Shorten(context.Background(), model.ShortenRequest{URL: "https://new.com"})

	// даём новому вызову и его цепочке завершиться, затем отпускаем старый
	require.Eventually(t, func() bool {
		st := o.State()
		return st.QR.Result != nil && st.Analytics.Result != nil
	}, 5*time.Second, 10*time.Millisecond)
	close(releaseOld)
	o.Wait()

	assert.Equal(t, "new", o.State().Shorten.Result.Code)
}

func TestObserverPanic_DoesNotStallEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := mocks.NewMockGateway(ctrl)
	gw.EXPECT().FetchAnalytics(gomock.Any(), "abc123").Return(analyticsFor("abc123"), nil).Times(2)

	o := New(gw, testBaseURL)
	var once sync.Once
	o.Subscribe(notify.ObserverFunc(func(notify.Event) {
		once.Do(func() { panic("observer bug") })
	}))
	rec := &eventRecorder{}
	o.Subscribe(rec)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.FetchAnalytics(context.Background(), "abc123")
		o.Wait()
		o.FetchAnalytics(context.Background(), "abc123")
		o.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("рассылка событий зависла после паники наблюдателя")
	}

	assert.Len(t, rec.all(), 4)
	st := o.State()
	assert.False(t, st.Analytics.Loading)
	require.NotNil(t, st.Analytics.Result)
}
