package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type recorded struct {
	method string
	path   string
	body   string
	reqID  string
}

type fakeBackend struct {
	mu       sync.Mutex
	calls    []recorded
	handlers map[string]func(ctx *fasthttp.RequestCtx)
}

func (f *fakeBackend) handle(ctx *fasthttp.RequestCtx) {
	key := string(ctx.Method()) + " " + string(ctx.Path())
	f.mu.Lock()
	f.calls = append(f.calls, recorded{
		method: string(ctx.Method()),
		path:   string(ctx.Path()),
		body:   string(ctx.PostBody()),
		reqID:  string(ctx.Request.Header.Peek("X-Request-Id")),
	})
	h := f.handlers[key]
	f.mu.Unlock()
	if h == nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	h(ctx)
}

func (f *fakeBackend) recorded() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.calls...)
}

func newTestClient(t *testing.T, handlers map[string]func(ctx *fasthttp.RequestCtx), opts ...Option) (*Client, *fakeBackend) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	fb := &fakeBackend{handlers: handlers}
	srv := &fasthttp.Server{Handler: fb.handle}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})
	base := []Option{
		WithDial(func(addr string) (net.Conn, error) { return ln.Dial() }),
		WithHeaderProvider(DefaultHeaders()),
	}
	c := NewClient("http://xo.test", append(base, opts...)...)
	return c, fb
}

func writeJSON(ctx *fasthttp.RequestCtx, v any) {
	ctx.SetContentType("application/json")
	raw, _ := json.Marshal(v)
	ctx.SetBody(raw)
}

func TestCreateSession(t *testing.T) {
	c, fb := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"POST /api/session/create": func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusCreated)
			writeJSON(ctx, map[string]any{
				"_id": "abc123", "player1": "Ann", "player2": "Bob",
				"stats":  map[string]int{"player1Wins": 0, "player2Wins": 0, "draws": 0},
				"rounds": []any{}, "isActive": true,
			})
		},
	})
	s, err := c.CreateSession(context.Background(), "Ann", "Bob")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID != "abc123" || s.Player1 != "Ann" || !s.IsActive {
		t.Fatalf("unexpected session: %+v", s)
	}
	calls := fb.recorded()
	if len(calls) != 1 || calls[0].body != `{"player1":"Ann","player2":"Bob"}` {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if calls[0].reqID == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func TestRecordRound(t *testing.T) {
	c, fb := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"POST /api/session/s1/round": func(ctx *fasthttp.RequestCtx) {
			writeJSON(ctx, map[string]any{
				"stats":  map[string]int{"player1Wins": 2, "player2Wins": 1, "draws": 0},
				"rounds": []map[string]string{{"winner": "Ann"}, {"winner": "Bob"}, {"winner": "Ann"}},
			})
		},
	})
	r, err := c.RecordRound(context.Background(), "s1", "Ann")
	if err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	if r.Stats.Player1Wins != 2 || r.Stats.Player2Wins != 1 || len(r.Rounds) != 3 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if got := fb.recorded()[0].body; got != `{"winner":"Ann"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestLifecycleRoutes(t *testing.T) {
	ok := func(ctx *fasthttp.RequestCtx) { writeJSON(ctx, map[string]string{"message": "ok"}) }
	c, fb := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"POST /api/session/s1/stop":       ok,
		"POST /api/session/s1/reactivate": ok,
		"DELETE /api/session/s1":          ok,
		"GET /api/session/":               ok,
	})
	ctx := context.Background()
	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if err := c.EndSession(ctx, "s1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if err := c.ReactivateSession(ctx, "s1"); err != nil {
		t.Fatalf("ReactivateSession: %v", err)
	}
	if err := c.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	want := []string{"GET /api/session/", "POST /api/session/s1/stop", "POST /api/session/s1/reactivate", "DELETE /api/session/s1"}
	calls := fb.recorded()
	if len(calls) != len(want) {
		t.Fatalf("calls = %+v", calls)
	}
	for i, w := range want {
		if got := calls[i].method + " " + calls[i].path; got != w {
			t.Fatalf("call %d = %s, want %s", i, got, w)
		}
	}
}

func TestListSessionsShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		ids  []string
	}{
		{"array", `[{"_id":"a","player1":"Ann","player2":"Bob"},{"_id":"b"}]`, []string{"a", "b"}},
		{"envelope", `{"sessions":[{"_id":"a"}],"pagination":{"page":1}}`, []string{"a"}},
		{"rows without id dropped", `[{"player1":"x"},null,7,{"_id":"c"}]`, []string{"c"}},
		{"object without sessions", `{"data":[{"_id":"a"}]}`, nil},
		{"scalar", `"nope"`, nil},
		{"not json", `<html>oops</html>`, nil},
		{"empty body", ``, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
				"GET /api/session/all": func(ctx *fasthttp.RequestCtx) { ctx.SetBodyString(tc.body) },
			})
			got, err := c.ListSessions(context.Background())
			if err != nil {
				t.Fatalf("ListSessions: %v", err)
			}
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != len(tc.ids) {
				t.Fatalf("got %d sessions, want %d: %+v", len(got), len(tc.ids), got)
			}
			for i, id := range tc.ids {
				if got[i].ID != id {
					t.Fatalf("row %d id = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListSessionsMalformedRowFields(t *testing.T) {
	c, _ := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"GET /api/session/all": func(ctx *fasthttp.RequestCtx) {
			ctx.SetBodyString(`[{"_id":"a","stats":"bad","rounds":{"x":1},"createdAt":"2026-01-02T03:04:05Z"}]`)
		},
	})
	got, err := c.ListSessions(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("ListSessions: %v %+v", err, got)
	}
	if got[0].Stats.Total() != 0 || got[0].Rounds != nil {
		t.Fatalf("expected zero stats and nil rounds: %+v", got[0])
	}
	if got[0].CreatedAt.Year() != 2026 {
		t.Fatalf("createdAt not parsed: %v", got[0].CreatedAt)
	}
}

func TestStatusErrorNotRetriedForPost(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"POST /api/session/create": func(ctx *fasthttp.RequestCtx) {
			atomic.AddInt32(&hits, 1)
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		},
	})
	_, err := c.CreateSession(context.Background(), "Ann", "Bob")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != 503 {
		t.Fatalf("want StatusError 503, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("create should not be retried, hits=%d", hits)
	}
}

func TestGetRetriedOn5xx(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"GET /api/session/": func(ctx *fasthttp.RequestCtx) {
			if atomic.AddInt32(&hits, 1) < 2 {
				ctx.SetStatusCode(fasthttp.StatusBadGateway)
				return
			}
			ctx.SetBodyString(`{"status":"ok"}`)
		},
	}, WithRetry(3))
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("hits = %d", hits)
	}
}

func TestBeaconDeliversAndDrains(t *testing.T) {
	got := make(chan string, 1)
	c, _ := newTestClient(t, map[string]func(*fasthttp.RequestCtx){
		"POST /api/session/s9/stop": func(ctx *fasthttp.RequestCtx) { got <- string(ctx.PostBody()) },
	})
	if !c.Beacon("s9") {
		t.Fatalf("Beacon not dispatched")
	}
	if !c.Drain(2 * time.Second) {
		t.Fatalf("Drain timed out")
	}
	select {
	case body := <-got:
		if strings.TrimSpace(body) != "{}" {
			t.Fatalf("beacon body = %q", body)
		}
	default:
		t.Fatalf("beacon not received")
	}
}

func TestBeaconUnavailableAfterClose(t *testing.T) {
	c, _ := newTestClient(t, nil)
	_ = c.Close()
	if c.Beacon("s1") {
		t.Fatalf("beacon dispatched on closed client")
	}
	if err := c.Health(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}

func TestIDPathEscapes(t *testing.T) {
	if got := idPath("a/b", "stop"); got != "/a%2Fb/stop" {
		t.Fatalf("idPath = %q", got)
	}
	if got := idPath(" x ", ""); got != "/x" {
		t.Fatalf("idPath = %q", got)
	}
}
