// Package apiclient is the console's API client. Every request goes through a
// Coordinator that attaches the access token and transparently refreshes an
// expired session, collapsing concurrent 401s into a single refresh.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-asset-console/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRefreshTimeout = 10 * time.Second
	maxErrorBody          = 64 << 10

	authPathPrefix = "/auth/"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type retriedKey struct{}

type refreshResult struct {
	accessToken string
	err         error
}

// Coordinator owns the session and the refresh state. It is safe for
// concurrent use; create one per process and share it.
type Coordinator struct {
	baseURL        *url.URL
	transport      Doer
	store          session.Store
	notifier       Notifier
	onExpired      func()
	logger         zerolog.Logger
	refreshTimeout time.Duration
	now            func() time.Time

	mu         sync.Mutex
	sess       *session.Session
	refreshing bool
	pending    []chan refreshResult // FIFO, non-empty only while refreshing
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTransport replaces the default *http.Client.
func WithTransport(d Doer) Option {
	return func(c *Coordinator) {
		c.transport = d
	}
}

// WithStore persists the session. Without a store the session lives in memory.
func WithStore(s session.Store) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithNotifier sets where user-visible failure messages go.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithSessionExpiredHandler is called after the session was cleared because
// it could not be refreshed. It is the "redirect to login" hook.
func WithSessionExpiredHandler(f func()) Option {
	return func(c *Coordinator) {
		c.onExpired = f
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRefreshTimeout bounds the refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.refreshTimeout = d
	}
}

// New creates a Coordinator for the API rooted at baseURL, for example
// http://localhost:8080/api/v1, and restores the persisted session.
func New(baseURL string, opts ...Option) (*Coordinator, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Coordinator{
		baseURL:        u,
		transport:      &http.Client{Timeout: defaultTimeout},
		logger:         log.Logger,
		refreshTimeout: defaultRefreshTimeout,
		now:            time.Now,
		sess:           &session.Session{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}

	if c.store != nil {
		restored, err := c.store.Load()
		if err != nil {
			c.logger.Warn().Err(err).Msg("failed to restore session, starting anonymous")
		} else if restored != nil {
			c.sess = restored
		}
	}
	return c, nil
}

// BaseURL is the API root.
func (c *Coordinator) BaseURL() string {
	return c.baseURL.String()
}

// Session returns a copy of the current session.
func (c *Coordinator) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Clone()
}

// State reports where the session is in its lifecycle.
func (c *Coordinator) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.refreshing:
		return session.StateRefreshing
	case c.sess.IsAuthenticated():
		return session.StateAuthenticated
	}
	return session.StateAnonymous
}

// Attach returns a copy of req carrying the current access token as a bearer
// credential. Without a token the copy carries no credential at all.
func (c *Coordinator) Attach(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	c.mu.Lock()
	tok := c.sess.Token()
	authenticated := c.sess.IsAuthenticated()
	c.mu.Unlock()
	if !authenticated {
		out.Header.Del("Authorization")
		return out
	}
	tok.SetAuthHeader(out)
	return out
}

// NewRequest builds a request for path relative to the base URL. A non-nil
// body is sent as JSON.
func (c *Coordinator) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	target := c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do sends req with the current access token. A 401 triggers the refresh
// protocol and one replay; any other failure is returned as *APIError.
func (c *Coordinator) Do(req *http.Request) (*http.Response, error) {
	attached := c.Attach(req)
	resp, err := c.transport.Do(attached)
	if err != nil {
		apiErr := &APIError{
			Kind:    c.kindFor(attached, 0),
			Message: fallbackMessage,
			Method:  attached.Method,
			Path:    c.relativePath(attached),
			Err:     err,
		}
		c.surface(attached, apiErr)
		return nil, apiErr
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	return c.handleFailure(attached, resp)
}

func (c *Coordinator) handleFailure(req *http.Request, resp *http.Response) (*http.Response, error) {
	apiErr := c.readError(req, resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !isRetried(req) && !c.isCredentialEndpoint(req):
		return c.recoverUnauthorized(req, apiErr)
	case resp.StatusCode == http.StatusForbidden:
		c.notifier.Notify(forbiddenMessage)
		return nil, apiErr
	}
	c.surface(req, apiErr)
	return nil, apiErr
}

// recoverUnauthorized runs the single-flight refresh. Exactly one caller
// performs the refresh; the rest park on a channel until it settles.
func (c *Coordinator) recoverUnauthorized(req *http.Request, unauthorized *APIError) (*http.Response, error) {
	c.mu.Lock()
	if c.sess.RefreshToken == "" {
		held := c.resetSessionLocked()
		c.mu.Unlock()
		c.logger.Info().Str("path", unauthorized.Path).Msg("unauthorized without a refresh token")
		if held {
			c.expired()
		}
		unauthorized.Err = ErrSessionExpired
		return nil, unauthorized
	}

	// The token was replaced after this request went out; replay with the
	// current one instead of refreshing again.
	if sent := bearerToken(req); !c.refreshing && sent != "" && sent != c.sess.AccessToken && c.sess.AccessToken != "" {
		c.mu.Unlock()
		return c.replay(req)
	}

	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.pending = append(c.pending, ch)
		c.mu.Unlock()

		res := <-ch
		if res.err != nil {
			unauthorized.Err = ErrSessionExpired
			return nil, unauthorized
		}
		return c.replay(req)
	}

	c.refreshing = true
	refreshToken := c.sess.RefreshToken
	c.mu.Unlock()

	c.logger.Debug().Str("path", unauthorized.Path).Msg("access token rejected, refreshing")
	tokens, err := c.refresh(req.Context(), refreshToken)

	c.mu.Lock()
	queue := c.pending
	c.pending = nil
	c.refreshing = false
	var result refreshResult
	var snapshot *session.Session
	if err != nil {
		// The session goes with the refreshing flag so no 401 can start a
		// refresh with the token that just failed.
		result.err = err
		c.resetSessionLocked()
	} else {
		c.sess.AccessToken = tokens.AccessToken
		if tokens.RefreshToken != "" {
			c.sess.RefreshToken = tokens.RefreshToken
		}
		c.sess.Expiry = c.expiryFor(tokens.ExpiresIn)
		result.accessToken = tokens.AccessToken
		snapshot = c.sess.Clone()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Int("pending", len(queue)).Msg("session refresh failed")
		for _, ch := range queue {
			ch <- result
		}
		c.expired()
		unauthorized.Err = fmt.Errorf("%w: %w", ErrSessionExpired, err)
		return nil, unauthorized
	}

	c.persist(snapshot)
	c.logger.Debug().Int("pending", len(queue)).Msg("session refreshed")
	for _, ch := range queue {
		ch <- result
	}
	return c.replay(req)
}

// replay resubmits req once with the current token. A second 401 is not
// recovered.
func (c *Coordinator) replay(req *http.Request) (*http.Response, error) {
	retry := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, &APIError{
				Kind:    KindUnauthorized,
				Message: fallbackMessage,
				Method:  req.Method,
				Path:    c.relativePath(req),
				Err:     ErrBodyNotReplayable,
			}
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		retry.Body = body
	}
	return c.Do(retry)
}

// resetSessionLocked empties the in-memory session and reports whether it
// held any token. c.mu must be held.
func (c *Coordinator) resetSessionLocked() bool {
	held := c.sess.AccessToken != "" || c.sess.RefreshToken != ""
	c.sess = &session.Session{}
	return held
}

// expired finishes an expiry whose in-memory session is already reset: the
// persisted copy is dropped and the expired hook fires.
func (c *Coordinator) expired() {
	c.clearStore()
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Coordinator) clearSession() {
	c.mu.Lock()
	c.resetSessionLocked()
	c.mu.Unlock()
	c.clearStore()
}

func (c *Coordinator) clearStore() {
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Err(err).Msg("failed to clear persisted session")
		}
	}
}

func (c *Coordinator) persist(s *session.Session) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(s); err != nil {
		c.logger.Err(err).Msg("failed to persist session")
	}
}

func (c *Coordinator) expiryFor(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return c.now().Add(time.Duration(expiresIn) * time.Second)
}

// surface shows the failure to the user unless the request targeted an
// authentication endpoint, whose caller renders its own message.
func (c *Coordinator) surface(req *http.Request, apiErr *APIError) {
	if c.isAuthEndpoint(req) {
		return
	}
	c.notifier.Notify(apiErr.Message)
}

func (c *Coordinator) readError(req *http.Request, resp *http.Response) *APIError {
	defer resp.Body.Close()
	apiErr := &APIError{
		Kind:       c.kindFor(req, resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    fallbackMessage,
		Method:     req.Method,
		Path:       c.relativePath(req),
	}
	var body struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Code = body.ErrorCode
	}
	return apiErr
}

func (c *Coordinator) kindFor(req *http.Request, status int) ErrorKind {
	switch {
	case status == http.StatusForbidden:
		return KindForbidden
	case c.isAuthEndpoint(req):
		return KindAuthEndpoint
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	}
	return KindGeneric
}

func (c *Coordinator) relativePath(req *http.Request) string {
	p := strings.TrimPrefix(req.URL.Path, c.baseURL.Path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (c *Coordinator) isAuthEndpoint(req *http.Request) bool {
	return strings.HasPrefix(c.relativePath(req), authPathPrefix)
}

// isCredentialEndpoint matches the endpoints that exchange credentials; a
// 401 from them is a rejected credential, not an expired session.
func (c *Coordinator) isCredentialEndpoint(req *http.Request) bool {
	p := c.relativePath(req)
	return p == PathLogin || p == PathRefresh
}

func isRetried(req *http.Request) bool {
	retried, _ := req.Context().Value(retriedKey{}).(bool)
	return retried
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}
