package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/common/ratelimit"
	"jmapclient/internal/common/security"
	"jmapclient/internal/jmap/protocol"
)

const (
	defaultKeepAliveInterval = 30 * time.Second
	defaultPollInterval      = 15 * time.Second
	maxErrorBodyLen          = 512
)

// Config holds connection settings for a Client.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	AccessToken string
	AuthMethod  string // auto, basic, bearer
	SkipVerify  bool

	// ProxyURL routes requests through an http, https or socks5 proxy.
	ProxyURL string

	RateLimit float64 // requests per second, 0 disables

	KeepAliveInterval time.Duration
	PollInterval      time.Duration

	Logger     *slog.Logger
	HTTPClient *http.Client
}

// snapshot is the immutable per-connect session view. It is replaced by
// value on reconnect, never mutated field-by-field, so a request in flight
// keeps using the apiUrl it captured at call time.
type snapshot struct {
	session   *protocol.Session
	accountId protocol.Id
}

// Client is a JMAP protocol client. It is safe for concurrent use: the
// keep-alive heartbeat and the change poller issue their own requests
// alongside caller-issued ones.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *ratelimit.Limiter

	mu   sync.RWMutex
	snap *snapshot

	onError func(error)

	keepAliveCancel context.CancelFunc

	poller *poller
}

// New creates a disconnected client from config.
func New(config Config) *Client {
	if config.KeepAliveInterval <= 0 {
		config.KeepAliveInterval = defaultKeepAliveInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.SkipVerify,
			},
		}
		if config.ProxyURL != "" {
			if proxyURL, err := url.Parse(config.ProxyURL); err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			} else {
				logger.LogWarn(config.Logger, "ignoring malformed proxy URL", "error", err)
			}
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		}
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger,
		limiter:    ratelimit.New(config.RateLimit),
	}
	c.poller = newPoller(c)
	return c
}

// DiscoveryURL returns the well-known discovery URL for the configured host.
func (c *Client) DiscoveryURL() string {
	host := c.config.Host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		if c.config.Port == 0 || c.config.Port == 443 {
			host = "https://" + host
		} else {
			host = fmt.Sprintf("https://%s:%d", host, c.config.Port)
		}
	}
	return protocol.DiscoveryURL(host)
}

// Connect fetches the session document, resolves the default account and
// starts the keep-alive heartbeat. Any previous session is replaced.
func (c *Client) Connect(ctx context.Context) error {
	if exp, ok := c.TokenExpiry(); ok && time.Now().After(exp) {
		logger.LogWarn(c.logger, "access token appears expired",
			"token", security.MaskAccessToken(c.config.AccessToken),
			"expiredAt", exp)
	}

	snap, err := c.discover(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.startKeepAlive()

	logger.LogInfo(c.logger, "connected",
		"username", security.MaskUsername(snap.session.Username),
		"accountId", string(snap.accountId),
		"apiUrl", snap.session.APIURL)
	return nil
}

// Reconnect performs a full re-discovery and atomically replaces the stored
// session. In-flight requests keep the snapshot they captured.
func (c *Client) Reconnect(ctx context.Context) error {
	snap, err := c.discover(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	logger.LogInfo(c.logger, "reconnected", "accountId", string(snap.accountId))
	return nil
}

// Disconnect stops the keep-alive and poller timers and discards session
// state. Subsequent operations fail with ErrNotConnected until Connect
// succeeds again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.keepAliveCancel != nil {
		c.keepAliveCancel()
		c.keepAliveCancel = nil
	}
	c.snap = nil
	c.mu.Unlock()

	c.poller.stop()
	logger.LogDebug(c.logger, "disconnected")
}

// OnConnectionError registers a handler for background failures (keep-alive
// reconnect failures). Last registration wins.
func (c *Client) OnConnectionError(cb func(error)) {
	c.mu.Lock()
	c.onError = cb
	c.mu.Unlock()
}

func (c *Client) reportError(err error) {
	c.mu.RLock()
	cb := c.onError
	c.mu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

// discover fetches and validates the session document and resolves the
// default account without touching client state.
func (c *Client) discover(ctx context.Context) (*snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DiscoveryURL(), nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	c.addAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthenticationError{Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, &ConnectionError{Status: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	session, err := protocol.ParseSession(data)
	if err != nil {
		return nil, &ProtocolError{Reason: "invalid session document", Err: err}
	}
	if err := session.Validate(); err != nil {
		return nil, &ProtocolError{Reason: "incomplete session document", Err: err}
	}

	accountId, err := resolveDefaultAccount(session)
	if err != nil {
		return nil, err
	}

	return &snapshot{session: session, accountId: accountId}, nil
}

// resolveDefaultAccount picks the primary mail account, or failing that the
// first account id in lexicographic order.
func resolveDefaultAccount(session *protocol.Session) (protocol.Id, error) {
	if id, ok := session.GetPrimaryMailAccountId(); ok {
		return id, nil
	}
	ids := make([]string, 0, len(session.Accounts))
	for id := range session.Accounts {
		ids = append(ids, string(id))
	}
	if len(ids) == 0 {
		return "", ErrNoAccount
	}
	sort.Strings(ids)
	return protocol.Id(ids[0]), nil
}

// current returns the session snapshot, or ErrNotConnected.
func (c *Client) current() (*snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap == nil {
		return nil, ErrNotConnected
	}
	return snap, nil
}

// Session returns the session document captured at the last successful
// connect. Callers must treat it as read-only.
func (c *Client) Session() (*protocol.Session, error) {
	snap, err := c.current()
	if err != nil {
		return nil, err
	}
	return snap.session, nil
}

// AccountId returns the default account id for this client instance.
func (c *Client) AccountId() (string, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}
	return string(snap.accountId), nil
}

// Username returns the session username.
func (c *Client) Username() (string, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}
	return snap.session.Username, nil
}

// AccountIdForCapability resolves the account to address for a capability:
// the registered primary account first, then a scan of the account table,
// then the default account. Calendars and contacts may live on a different
// account than mail on shared-folder servers.
func (c *Client) AccountIdForCapability(capability string) (protocol.Id, error) {
	snap, err := c.current()
	if err != nil {
		return "", err
	}
	if id, ok := snap.session.GetPrimaryAccountId(capability); ok {
		return id, nil
	}
	if id, ok := findAccountWithCapabilitySorted(snap.session, capability); ok {
		return id, nil
	}
	return snap.accountId, nil
}

// findAccountWithCapabilitySorted scans accounts in lexicographic id order so
// resolution is deterministic across calls.
func findAccountWithCapabilitySorted(session *protocol.Session, capability string) (protocol.Id, bool) {
	ids := make([]string, 0, len(session.Accounts))
	for id := range session.Accounts {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		account := session.Accounts[protocol.Id(id)]
		if _, ok := account.AccountCapabilities[capability]; ok {
			return protocol.Id(id), true
		}
	}
	return "", false
}

// HasCapability reports whether the connected server advertises a capability.
func (c *Client) HasCapability(uri string) bool {
	snap, err := c.current()
	if err != nil {
		return false
	}
	return snap.session.HasCapability(uri)
}

// SupportsEmailSubmission reports whether sending via EmailSubmission works.
func (c *Client) SupportsEmailSubmission() bool {
	return c.HasCapability(protocol.SubmissionCapability)
}

// SupportsQuota reports whether the quota extension is available.
func (c *Client) SupportsQuota() bool {
	return c.HasCapability(protocol.QuotaCapability)
}

// SupportsCalendars reports whether the calendars extension is available.
func (c *Client) SupportsCalendars() bool {
	return c.HasCapability(protocol.CalendarsCapability)
}

// SupportsContacts reports whether the contacts extension is available.
func (c *Client) SupportsContacts() bool {
	return c.HasCapability(protocol.ContactsCapability)
}

// requireCapability re-validates a capability defensively even though
// callers are expected to check the Supports predicates first.
func (c *Client) requireCapability(uri string) error {
	if _, err := c.current(); err != nil {
		return err
	}
	if !c.HasCapability(uri) {
		return &CapabilityUnsupportedError{Capability: uri}
	}
	return nil
}

// MaxSizeUpload returns the server's maximum blob upload size in bytes.
func (c *Client) MaxSizeUpload() (int64, error) {
	snap, err := c.current()
	if err != nil {
		return 0, err
	}
	info, err := snap.session.GetCoreCapability()
	if err != nil {
		return 0, &ProtocolError{Reason: "core capability", Err: err}
	}
	return info.MaxSizeUpload, nil
}

// MaxCallsInRequest returns the server's batch size limit.
func (c *Client) MaxCallsInRequest() (int, error) {
	snap, err := c.current()
	if err != nil {
		return 0, err
	}
	info, err := snap.session.GetCoreCapability()
	if err != nil {
		return 0, &ProtocolError{Reason: "core capability", Err: err}
	}
	return info.MaxCallsInRequest, nil
}

// TokenExpiry inspects the configured bearer token without verifying its
// signature and returns the exp claim. Used only for early warnings; the
// server remains the authority.
func (c *Client) TokenExpiry() (time.Time, bool) {
	if c.config.AccessToken == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(c.config.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// addAuth attaches the configured credentials to a request.
func (c *Client) addAuth(req *http.Request) {
	authMethod := c.config.AuthMethod
	if strings.EqualFold(authMethod, "auto") || authMethod == "" {
		if c.config.AccessToken != "" {
			authMethod = "bearer"
		} else if c.config.Password != "" {
			authMethod = "basic"
		}
	}

	switch strings.ToLower(authMethod) {
	case "bearer":
		if c.config.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
		}
	case "basic":
		if c.config.Username != "" && c.config.Password != "" {
			req.SetBasicAuth(c.config.Username, c.config.Password)
		}
	}
}

// startKeepAlive launches the heartbeat goroutine. An existing heartbeat is
// cancelled first so reconnecting does not leak timers.
func (c *Client) startKeepAlive() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.keepAliveCancel != nil {
		c.keepAliveCancel()
	}
	c.keepAliveCancel = cancel
	c.mu.Unlock()

	go c.keepAliveLoop(ctx)
}

// keepAliveLoop issues a Core/echo on every tick. On echo failure it attempts
// exactly one reconnect; a reconnect failure is reported via the registered
// error handler and the next tick tries again from scratch.
func (c *Client) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.echo(ctx); err != nil {
				logger.LogWarn(c.logger, "keep-alive echo failed", "error", err)
				if rerr := c.Reconnect(ctx); rerr != nil {
					logger.LogError(c.logger, "reconnect failed", "error", rerr)
					c.reportError(rerr)
				}
			}
		}
	}
}

// echo issues a no-op Core/echo round trip.
func (c *Client) echo(ctx context.Context) error {
	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodEcho,
			Arguments: map[string]interface{}{"ping": "pong"},
			CallId:    "0",
		},
	}
	_, err := c.Do(ctx, []string{protocol.CoreCapability}, calls)
	return err
}
