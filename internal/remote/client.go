package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	sessionPath   = "/api/session"
	beaconTimeout = 3 * time.Second
	maxBeacons    = 4
)

var ErrClosed = errors.New("remote client closed")

// StatusError is a non-2xx reply from the session service.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("session api error: status=%d body=%s", e.Status, e.Body)
}

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client talks to the session record service.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int

	closed  atomic.Bool
	beacons sync.WaitGroup
	slots   chan struct{}
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial overrides the connection dialer (in-memory listeners in tests).
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// NewClient builds a client for apiURL; the session routes live under /api/session.
// An empty apiURL keeps paths relative to the same host, as a dev proxy would.
func NewClient(apiURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(strings.TrimSpace(apiURL), "/") + sessionPath,
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 8 * time.Second,
		retryMax:       3,
		slots:          make(chan struct{}, maxBeacons),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultHeaders tags every request with a per-process client id and a fresh request id.
func DefaultHeaders() HeaderProvider {
	clientID := uuid.NewString()
	return func() map[string]string {
		return map[string]string{
			"X-Client-Id":  clientID,
			"X-Request-Id": uuid.NewString(),
		}
	}
}

// Health resolves when the backend answers.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/", nil, nil, true)
}

type createRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

func (c *Client) CreateSession(ctx context.Context, player1, player2 string) (*domain.Session, error) {
	var s domain.Session
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/create", createRequest{Player1: player1, Player2: player2}, &s, false); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions tolerates a bare array, a {sessions: [...]} envelope or junk.
func (c *Client) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/all", nil, &raw, true); err != nil {
		if errors.Is(err, errDecode) {
			return []domain.Session{}, nil
		}
		return nil, err
	}
	return normalizeSessions(raw), nil
}

type roundRequest struct {
	Winner string `json:"winner"`
}

func (c *Client) RecordRound(ctx context.Context, sessionID, winner string) (*domain.RoundResult, error) {
	var r domain.RoundResult
	if err := c.doJSON(ctx, fasthttp.MethodPost, idPath(sessionID, "round"), roundRequest{Winner: winner}, &r, false); err != nil {
		return nil, err
	}
	if r.Rounds == nil {
		r.Rounds = []domain.Round{}
	}
	return &r, nil
}

func (c *Client) EndSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, fasthttp.MethodPost, idPath(sessionID, "stop"), nil, nil, false)
}

func (c *Client) ReactivateSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, fasthttp.MethodPost, idPath(sessionID, "reactivate"), nil, nil, false)
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, idPath(sessionID, ""), nil, nil, false)
}

// Beacon dispatches a tracked, detached end-session notice. It reports false
// when the client is closed or every beacon slot is taken; the caller should
// then fall back to FireAndForget.
func (c *Client) Beacon(sessionID string) bool {
	if c.closed.Load() || strings.TrimSpace(sessionID) == "" {
		return false
	}
	select {
	case c.slots <- struct{}{}:
	default:
		return false
	}
	c.beacons.Add(1)
	go func() {
		defer func() {
			<-c.slots
			c.beacons.Done()
		}()
		c.sendStop("unload_beacon", sessionID)
	}()
	return true
}

// FireAndForget sends the same notice untracked; it may not complete before exit.
func (c *Client) FireAndForget(sessionID string) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	go c.sendStop("unload_fallback", sessionID)
}

func (c *Client) sendStop(event, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()
	err := c.doJSON(ctx, fasthttp.MethodPost, idPath(sessionID, "stop"), struct{}{}, nil, false)
	if err != nil {
		obslog.L().Debug(event+"_error", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	obslog.L().Info(event, zap.String("session_id", sessionID))
}

// Drain waits up to timeout for tracked beacons. It reports whether all finished.
func (c *Client) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		c.beacons.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close stops new beacons and releases idle connections.
func (c *Client) Close() error {
	c.closed.Store(true)
	c.http.CloseIdleConnections()
	return nil
}

func idPath(id, action string) string {
	p := "/" + url.PathEscape(strings.TrimSpace(id))
	if action != "" {
		p += "/" + action
	}
	return p
}

var errDecode = errors.New("decode response")

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	if c.closed.Load() {
		return ErrClosed
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = &StatusError{Status: status, Body: truncate(string(resp.Body()), 512)}
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil && len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%w: %v", errDecode, err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
