package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/skilltrack/internal/config"
	"github.com/pribylovaa/skilltrack/internal/guard"
	"github.com/pribylovaa/skilltrack/internal/models"
	"github.com/pribylovaa/skilltrack/internal/session"
	"github.com/pribylovaa/skilltrack/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// Пакет unit-тестов для internal/client (client.go, refresh.go).
// Backend — httptest-сервер с ротацией пары токенов на каждый refresh.

// backend — минимальный сервер:
//   - GET /api/v1/data: 200, если Bearer равен текущему access, иначе 401;
//   - GET /api/v1/missing: 404 с detail;
//   - POST /api/v1/auth/refresh: ротирует пару, если refresh совпал.
type backend struct {
	mu      sync.Mutex
	access  string
	refresh string
	gen     int

	refreshCalls atomic.Int32
	unauthorized atomic.Int32
	dataCalls    atomic.Int32
	authHeaders  []string

	// onRefresh, если задан, отвечает на refresh вместо штатной логики.
	onRefresh func(w http.ResponseWriter, r *http.Request)
	// beforeRefresh вызывается до обработки refresh.
	beforeRefresh func()
	// onData вызывается перед проверкой токена в /data.
	onData func()
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{access: "acc-0", refresh: "ref-0"}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/data", func(w http.ResponseWriter, r *http.Request) {
		b.dataCalls.Add(1)
		if b.onData != nil {
			b.onData()
		}

		h := r.Header.Get("Authorization")
		b.mu.Lock()
		b.authHeaders = append(b.authHeaders, h)
		valid := h == "Bearer "+b.access
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !valid {
			b.unauthorized.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	mux.HandleFunc("/api/v1/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Skill not found"}`))
	})

	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.beforeRefresh != nil {
			b.beforeRefresh()
		}
		if b.onRefresh != nil {
			b.onRefresh(w, r)
			return
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("refresh must be anonymous, got Authorization %q", r.Header.Get("Authorization"))
		}

		var body models.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if body.RefreshToken != b.refresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))
			return
		}
		b.gen++
		b.access = fmt.Sprintf("acc-%d", b.gen)
		b.refresh = fmt.Sprintf("ref-%d", b.gen)
		_ = json.NewEncoder(w).Encode(models.TokenPair{AccessToken: b.access, RefreshToken: b.refresh, TokenType: "bearer"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return b, srv
}

func (b *backend) headers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authHeaders...)
}

// expireAccess делает текущий access недействительным на сервере.
func (b *backend) expireAccess() {
	b.mu.Lock()
	b.access = "server-side-expired"
	b.mu.Unlock()
}

func testConfig(srv *httptest.Server) config.Config {
	return config.Config{
		API:      config.APIConfig{BaseURL: srv.URL + "/api/v1", UserAgent: "skilltrack-test"},
		Timeouts: config.TimeoutConfig{Request: 5 * time.Second, Refresh: 5 * time.Second},
	}
}

type navRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (n *navRecorder) Navigate(_ context.Context, route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *navRecorder) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

var getData = Request{Method: http.MethodGet, Path: "/data"}

func TestDo_AttachesBearer_WhenTokenPresent(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st)

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
	require.Equal(t, []string{"Bearer acc-0"}, b.headers())
	require.Equal(t, int32(0), b.refreshCalls.Load())
}

func TestDo_NoToken_NoAuthorizationHeader(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	c := New(testConfig(srv), session.NewMemory())

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, []string{""}, b.headers())
}

// TestDo_NonAuthErrors_ReturnedUnmodified — не-401 ответы отдаются как есть,
// без ошибки и без обращения к refresh.
func TestDo_NonAuthErrors_ReturnedUnmodified(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st)

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/missing"})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"detail":"Skill not found"}`, string(resp.Body))
	require.Equal(t, int32(0), b.refreshCalls.Load())
}

// TestDo_401WithoutRefreshToken_ReturnsOriginal — без refresh-токена
// исходный 401 возвращается, refresh не вызывается, хранилище не трогается.
func TestDo_401WithoutRefreshToken_ReturnsOriginal(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	nav := mocks.NewMockNavigator(ctrl)

	st.EXPECT().Get(gomock.Any()).Return(session.Credentials{}, nil).Times(2)
	nav.EXPECT().Navigate(gomock.Any(), gomock.Any()).Times(0)

	c := New(testConfig(srv), st, WithNavigator(nav))

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"detail":"Could not validate credentials"}`, string(resp.Body))
	require.Equal(t, int32(0), b.refreshCalls.Load())
}

// TestDo_ExpiredAccess_RefreshesAndRetriesOnce — 401 приводит к одному
// refresh, атомарной записи новой пары и одному повтору с новым токеном.
func TestDo_ExpiredAccess_RefreshesAndRetriesOnce(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.expireAccess()

	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	nav := &navRecorder{}
	c := New(testConfig(srv), st, WithNavigator(nav))

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, int32(1), b.refreshCalls.Load())
	require.Equal(t, []string{"Bearer acc-0", "Bearer acc-1"}, b.headers())

	got, err := st.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}, got)
	require.Empty(t, nav.Routes())
}

// TestDo_RetryAlso401_NoSecondRecovery — повтор, получивший 401, отдаётся
// вызывающему; второго refresh нет.
func TestDo_RetryAlso401_NoSecondRecovery(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.onRefresh = func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.TokenPair{AccessToken: "still-bad", RefreshToken: "ref-x"})
	}
	b.expireAccess()

	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	nav := &navRecorder{}
	c := New(testConfig(srv), st, WithNavigator(nav))

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), b.refreshCalls.Load())
	require.Equal(t, int32(2), b.dataCalls.Load())
	require.Empty(t, nav.Routes())

	got, _ := st.Get(context.Background())
	require.Equal(t, "still-bad", got.AccessToken)
}

// TestDo_RefreshFailure_ClearsAndNavigates — любой сбой refresh очищает
// хранилище, вызывает Navigator ровно один раз и не отдаёт ответ.
func TestDo_RefreshFailure_ClearsAndNavigates(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		respond func(w http.ResponseWriter, r *http.Request)
	}{
		{"rejected_401", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))
		}},
		{"server_error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"garbage_body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"incomplete_pair", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"only-access"}`))
		}},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b, srv := newBackend(t)
			b.onRefresh = tc.respond
			b.expireAccess()

			ctrl := gomock.NewController(t)
			nav := mocks.NewMockNavigator(ctrl)
			nav.EXPECT().Navigate(gomock.Any(), guard.RouteLogin).Times(1)

			st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
			c := New(testConfig(srv), st, WithNavigator(nav))

			resp, err := c.Do(context.Background(), getData)
			require.Nil(t, resp)
			require.ErrorIs(t, err, ErrSessionExpired)

			got, err := st.Get(context.Background())
			require.NoError(t, err)
			require.True(t, got.Empty())
			require.Equal(t, int32(1), b.dataCalls.Load(), "исходный запрос не повторяется")
		})
	}
}

// TestDo_RefreshTransportError_SessionExpired — обрыв соединения во время
// refresh тоже завершает сессию.
func TestDo_RefreshTransportError_SessionExpired(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.expireAccess()
	b.onRefresh = func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}

	nav := &navRecorder{}
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st, WithNavigator(nav))

	_, err := c.Do(context.Background(), getData)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, []string{guard.RouteLogin}, nav.Routes())
}

func TestDo_SkipRefresh_Returns401(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.expireAccess()
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st)

	req := getData
	req.SkipRefresh = true
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), b.refreshCalls.Load())
}

func TestDo_TransportError_Propagated(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t)
	cfg := testConfig(srv)
	srv.Close()

	nav := &navRecorder{}
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(cfg, st, WithNavigator(nav))

	resp, err := c.Do(context.Background(), getData)
	require.Nil(t, resp)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSessionExpired)
	require.Empty(t, nav.Routes())

	got, _ := st.Get(context.Background())
	require.Equal(t, "acc-0", got.AccessToken, "хранилище не трогается")
}

// TestDo_ConcurrentExpired_SingleRefresh — параллельные 401 разделяют один
// refresh и все получают успешный повтор.
func TestDo_ConcurrentExpired_SingleRefresh(t *testing.T) {
	t.Parallel()

	const n = 8

	b, srv := newBackend(t)
	b.expireAccess()
	b.beforeRefresh = func() {
		// Ждём, пока все запросы получат 401, затем даём им время встать в очередь.
		deadline := time.Now().Add(3 * time.Second)
		for b.unauthorized.Load() < n && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
	}

	nav := &navRecorder{}
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st, WithNavigator(nav))

	var wg sync.WaitGroup
	statuses := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Do(context.Background(), getData)
			errs[i] = err
			if resp != nil {
				statuses[i] = resp.StatusCode
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, http.StatusOK, statuses[i])
	}
	require.Equal(t, int32(1), b.refreshCalls.Load())
	require.Empty(t, nav.Routes())
}

// TestDo_ConcurrentExpired_RefreshFails_NavigatesOnce — общий неудачный
// refresh уводит на вход один раз, все ожидающие получают ErrSessionExpired.
func TestDo_ConcurrentExpired_RefreshFails_NavigatesOnce(t *testing.T) {
	t.Parallel()

	const n = 6

	b, srv := newBackend(t)
	b.expireAccess()
	b.beforeRefresh = func() {
		deadline := time.Now().Add(3 * time.Second)
		for b.unauthorized.Load() < n && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
	}
	b.onRefresh = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	nav := &navRecorder{}
	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st, WithNavigator(nav))

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Do(context.Background(), getData)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.ErrorIs(t, errs[i], ErrSessionExpired)
	}
	require.Equal(t, int32(1), b.refreshCalls.Load())
	require.Equal(t, []string{guard.RouteLogin}, nav.Routes())
}

// TestDo_StalePair_RetriesWithoutRefresh — если пока запрос летел, пару уже
// обновили, повтор идёт с текущей парой без нового refresh.
func TestDo_StalePair_RetriesWithoutRefresh(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	st := session.NewMemory(session.Credentials{AccessToken: "old", RefreshToken: "ref-old"})

	var once sync.Once
	b.onData = func() {
		// Другой участник уже обновил пару, пока наш запрос был в пути.
		once.Do(func() {
			_ = st.Set(context.Background(), session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
		})
	}

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c := New(testConfig(srv), st, WithMetrics(m))

	resp, err := c.Do(context.Background(), getData)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(0), b.refreshCalls.Load())
	require.Equal(t, []string{"Bearer old", "Bearer acc-0"}, b.headers())
	require.Equal(t, 1.0, testutil.ToFloat64(m.refresh.WithLabelValues(RefreshShared)))
}

// TestDo_CallerCanceledDuringRefresh_PairStillPersisted — отмена контекста
// вызывающего не прерывает общий refresh: новая пара сохраняется.
func TestDo_CallerCanceledDuringRefresh_PairStillPersisted(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.expireAccess()

	entered := make(chan struct{})
	release := make(chan struct{})
	b.beforeRefresh = func() {
		close(entered)
		<-release
	}

	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	nav := &navRecorder{}
	c := New(testConfig(srv), st, WithNavigator(nav))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()

	_, err := c.Do(ctx, getData)
	require.ErrorIs(t, err, context.Canceled)
	close(release)

	require.Eventually(t, func() bool {
		got, _ := st.Get(context.Background())
		return got.AccessToken == "acc-1"
	}, 3*time.Second, 10*time.Millisecond)
	require.Empty(t, nav.Routes())
}

func TestDo_Metrics(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.expireAccess()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	st := session.NewMemory(session.Credentials{AccessToken: "acc-0", RefreshToken: "ref-0"})
	c := New(testConfig(srv), st, WithMetrics(m))

	_, err = c.Do(context.Background(), getData)
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "401")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.refresh.WithLabelValues(RefreshOK)))

	// Повторная регистрация в том же реестре — ошибка.
	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestDo_EncodesQueryAndBody(t *testing.T) {
	t.Parallel()

	var gotQuery, gotBody, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	t.Cleanup(srv.Close)

	c := New(config.Config{API: config.APIConfig{BaseURL: srv.URL + "/"}}, session.NewMemory())
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/skills/",
		Query:  map[string][]string{"page": {"2"}},
		Body:   map[string]string{"name": "Go"},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.Decode(&out))
	require.Equal(t, 7, out.ID)

	require.Equal(t, "page=2", gotQuery)
	require.Equal(t, "application/json", gotCT)
	require.JSONEq(t, `{"name":"Go"}`, gotBody)
}

func TestResponse_Decode_Empty(t *testing.T) {
	t.Parallel()

	r := &Response{StatusCode: http.StatusNoContent}
	var v map[string]any
	require.NoError(t, r.Decode(&v))
	require.Nil(t, v)

	r = &Response{StatusCode: http.StatusOK, Body: []byte("{")}
	require.Error(t, r.Decode(&v))
	require.False(t, (&Response{StatusCode: 401}).OK())
}

func TestDo_StoreReadError(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t)
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Get(gomock.Any()).Return(session.Credentials{}, errors.New("boom"))

	c := New(testConfig(srv), st)
	_, err := c.Do(context.Background(), getData)
	require.ErrorContains(t, err, "read session")
}
