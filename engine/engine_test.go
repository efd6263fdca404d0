package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/models"
)

type stubEngine struct {
	name   string
	calls  atomic.Int32
	result *FetchResult
	err    error
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.EngineName = s.name
	return &r, nil
}

func TestDispatcherEscalatesShell(t *testing.T) {
	httpEng := &stubEngine{name: "http", result: &FetchResult{HTML: `<div id="root"></div>`, StatusCode: 200}}
	rodEng := &stubEngine{name: "rod", result: &FetchResult{HTML: "<h1>Jane</h1>", StatusCode: 200}}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()

	d := NewDispatcher([]Engine{httpEng, rodEng}, ShouldEscalate, mem)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://jane.dev/"})
	require.NoError(t, err)
	assert.Equal(t, "rod", res.EngineName)
	assert.Equal(t, "rod", mem.Get("jane.dev"))

	// Second call goes straight to the remembered engine.
	_, err = d.Dispatch(context.Background(), &FetchRequest{URL: "https://jane.dev/about"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), httpEng.calls.Load())
	assert.Equal(t, int32(2), rodEng.calls.Load())
}

func TestDispatcherStopsOnPageFailure(t *testing.T) {
	httpEng := &stubEngine{name: "http", err: models.NewNotFoundError()}
	rodEng := &stubEngine{name: "rod", result: &FetchResult{HTML: "ok"}}

	d := NewDispatcher([]Engine{httpEng, rodEng}, ShouldEscalate, nil)
	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://gone.dev/"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrCodeNotFound))
	assert.Zero(t, rodEng.calls.Load())
}

func TestDispatcherFallsBackToThinResult(t *testing.T) {
	httpEng := &stubEngine{name: "http", result: &FetchResult{HTML: "<p>short</p>", StatusCode: 200}}
	rodEng := &stubEngine{name: "rod", err: errors.New("chrome missing")}

	d := NewDispatcher([]Engine{httpEng, rodEng}, ShouldEscalate, nil)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://thin.dev/"})
	require.NoError(t, err)
	assert.Equal(t, "http", res.EngineName)
}

func TestDispatcherAllFail(t *testing.T) {
	d := NewDispatcher([]Engine{
		&stubEngine{name: "http", err: errors.New("tls")},
		&stubEngine{name: "rod", err: errors.New("crash")},
	}, nil, nil)
	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://x.dev/"})
	assert.EqualError(t, err, "crash")
}

func TestDomainMemoryExpiry(t *testing.T) {
	mem := NewDomainMemory(time.Minute)
	defer mem.Stop()
	now := time.Now()
	mem.now = func() time.Time { return now }

	mem.Set("a.dev", "rod")
	assert.Equal(t, "rod", mem.Get("a.dev"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, "", mem.Get("a.dev"))
	assert.Zero(t, mem.Len())
	mem.Stop()
}

func newCountingPool(t *testing.T, cfg AdaptivePoolConfig) (*AdaptivePool, *sync.Map) {
	t.Helper()
	var next atomic.Int64
	destroyed := &sync.Map{}
	pool := NewAdaptivePool(cfg,
		func() (int64, error) { return next.Add(1), nil },
		func(id int64) { destroyed.Store(id, true) },
	)
	t.Cleanup(pool.Stop)
	return pool, destroyed
}

func TestAdaptivePoolBoundsAndContext(t *testing.T) {
	pool, _ := newCountingPool(t, AdaptivePoolConfig{MinPages: 1, HardMax: 2})

	a, err := pool.Get(context.Background())
	require.NoError(t, err)
	b, err := pool.Get(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, pool.Size())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Put(a, true)
	c, err := pool.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.ID, "healthy tabs are reused")
	assert.Equal(t, 2, pool.Stats().Active)
}

func TestAdaptivePoolRetiresUnhealthy(t *testing.T) {
	pool, destroyed := newCountingPool(t, AdaptivePoolConfig{MinPages: 1, HardMax: 1})

	var first int64
	for i := 0; i < 3; i++ {
		h, err := pool.Get(context.Background())
		require.NoError(t, err)
		if i == 0 {
			first = h.ID
		}
		pool.Put(h, false)
	}

	_, gone := destroyed.Load(first)
	assert.True(t, gone)
	assert.Equal(t, 1, pool.Size(), "replaced to keep MinPages")
}

func TestAdaptivePoolStop(t *testing.T) {
	pool, _ := newCountingPool(t, AdaptivePoolConfig{MinPages: 1, HardMax: 1})
	pool.Stop()
	_, err := pool.Get(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestAdaptivePoolShrinksUnderPressure(t *testing.T) {
	pool, _ := newCountingPool(t, AdaptivePoolConfig{MinPages: 1, HardMax: 4, ScaleStep: 1})
	var held []*PageHandle
	for i := 0; i < 4; i++ {
		h, err := pool.Get(context.Background())
		require.NoError(t, err)
		held = append(held, h)
	}
	for _, h := range held {
		pool.Put(h, true)
	}
	pool.scaleCheck(0.99)
	assert.Equal(t, 1, pool.Size())
}

func TestNeedsBrowser(t *testing.T) {
	shell := `<html><body><div id="root"></div><script src="/main.js"></script></body></html>`
	assert.True(t, NeedsBrowser(shell))

	full := "<html><body><h1>Jane Doe</h1><p>" + strings.Repeat("Builds accessible web apps. ", 20) + "</p></body></html>"
	assert.False(t, NeedsBrowser(full))

	assert.False(t, ShouldEscalate(&FetchResult{HTML: shell, StatusCode: 404}))
}

func TestVisibleTextSkipsScripts(t *testing.T) {
	got := VisibleText(`<html><head><title>T</title></head><body><p>Hello</p><script>var x = "hidden";</script><p>World</p></body></html>`)
	assert.Equal(t, "Hello World", got)
}

func TestVisibleTextImpliedBody(t *testing.T) {
	got := VisibleText(`<!DOCTYPE html><title>Oops</title><h1>404 page not found</h1><p>Nothing here</p>`)
	assert.Equal(t, "404 page not found Nothing here", got)
}

func TestHTTPEngineFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			assert.Equal(t, "folio-test", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><head><title> Jane Doe - Portfolio </title></head><body>hi</body></html>")
		case "/old":
			http.Redirect(w, r, "/", http.StatusMovedPermanently)
		case "/cv.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	eng := NewHTTPEngineWithClient(srv.Client(), "folio-test")

	res, err := eng.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/old"})
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "Jane Doe - Portfolio", res.Title)
	assert.Equal(t, srv.URL+"/", res.FinalURL)

	res, err = eng.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/missing"})
	require.NoError(t, err, "error statuses are reported, not failed")
	assert.Equal(t, 404, res.StatusCode)

	_, err = eng.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/cv.pdf"})
	assert.Error(t, err)
}

func TestRobotsChecker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rc := NewRobotsChecker(srv.Client(), "folio")
	ok, err := rc.Allowed(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rc.Allowed(context.Background(), srv.URL+"/private/cv")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(1), hits.Load(), "robots.txt is cached per host")
}
