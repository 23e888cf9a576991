package client

import (
	"context"
	"sync"
	"time"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/protocol"
)

// StateChange reports which data types changed on an account, mapping type
// name ("Mailbox", "Email") to the new state token.
type StateChange struct {
	AccountId string
	Changed   map[string]string
}

// poller periodically re-fetches cheap per-type state tokens and fires a
// callback when any token differs from the last observed value. Polling
// stands in for server push: the authentication scheme cannot ride a
// text/event-stream connection without leaking credentials into the URL.
type poller struct {
	client *Client

	mu         sync.Mutex
	lastStates map[string]string
	callback   func(StateChange)
	cancel     context.CancelFunc
}

func newPoller(c *Client) *poller {
	return &poller{
		client:     c,
		lastStates: make(map[string]string),
	}
}

// StartPolling begins change detection: an immediate baseline fetch, then a
// re-fetch on every interval tick. Starting an already started poller
// restarts it.
func (c *Client) StartPolling() {
	c.poller.start(c.config.PollInterval)
}

// StopPolling stops the poll timer and clears the registered callback so a
// late tick cannot fire into a torn-down consumer.
func (c *Client) StopPolling() {
	c.poller.stop()
}

// OnStateChange registers the change callback. Only one callback exists at a
// time; registering again replaces it (last write wins).
func (c *Client) OnStateChange(cb func(StateChange)) {
	c.poller.mu.Lock()
	c.poller.callback = cb
	c.poller.mu.Unlock()
}

// LastStates returns a copy of the last observed token map, for external
// persistence across process restarts.
func (c *Client) LastStates() map[string]string {
	c.poller.mu.Lock()
	defer c.poller.mu.Unlock()
	out := make(map[string]string, len(c.poller.lastStates))
	for k, v := range c.poller.lastStates {
		out[k] = v
	}
	return out
}

// SetLastStates seeds the token map, typically from values persisted by a
// previous process. The next poll then reports everything that changed while
// the client was away.
func (c *Client) SetLastStates(states map[string]string) {
	c.poller.mu.Lock()
	defer c.poller.mu.Unlock()
	c.poller.lastStates = make(map[string]string, len(states))
	for k, v := range states {
		c.poller.lastStates[k] = v
	}
}

func (p *poller) start(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	go p.loop(ctx, interval)
}

func (p *poller) stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.callback = nil
	p.mu.Unlock()
}

func (p *poller) loop(ctx context.Context, interval time.Duration) {
	// Baseline fetch so the first tick has something to diff against.
	p.poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches the current state tokens (Mailbox and Email, plus ContactCard
// and CalendarEvent when the server supports them) in one batch and diffs
// them against the stored values. Stored tokens are updated whether or
// not a callback is registered; poll failures are logged and swallowed.
func (p *poller) poll(ctx context.Context) {
	states, accountId, err := p.client.fetchStates(ctx)
	if err != nil {
		logger.LogDebug(p.client.logger, "state poll failed", "error", err)
		return
	}

	p.mu.Lock()
	changed := make(map[string]string)
	for typ, token := range states {
		if prev, seen := p.lastStates[typ]; seen && prev != token {
			changed[typ] = token
		}
		p.lastStates[typ] = token
	}
	cb := p.callback
	p.mu.Unlock()

	if len(changed) > 0 && cb != nil {
		cb(StateChange{AccountId: accountId, Changed: changed})
	}
}

// fetchStates issues empty-ids /get calls, which return only the collection
// state token.
func (c *Client) fetchStates(ctx context.Context) (map[string]string, string, error) {
	snap, err := c.current()
	if err != nil {
		return nil, "", err
	}

	using := []string{protocol.CoreCapability, protocol.MailCapability}
	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodMailboxGet,
			Arguments: protocol.GetRequest{AccountId: snap.accountId, Ids: []protocol.Id{}},
			CallId:    "0",
		},
		{
			Name: protocol.MethodEmailGet,
			Arguments: protocol.GetRequest{
				AccountId:  snap.accountId,
				Ids:        []protocol.Id{},
				Properties: []string{"id"},
			},
			CallId: "1",
		},
	}
	typeByCall := map[string]string{"0": "Mailbox", "1": "Email"}
	methods := map[string]string{"0": protocol.MethodMailboxGet, "1": protocol.MethodEmailGet}

	// Contacts and calendars may live on a different account than mail, so
	// their state tokens are fetched from the capability's own account.
	if snap.session.HasContactsCapability() {
		contactsAccount, err := c.AccountIdForCapability(protocol.ContactsCapability)
		if err == nil {
			using = append(using, protocol.ContactsCapability)
			calls = append(calls, protocol.MethodCall{
				Name:      protocol.MethodContactGet,
				Arguments: protocol.GetRequest{AccountId: contactsAccount, Ids: []protocol.Id{}},
				CallId:    "2",
			})
			typeByCall["2"] = "ContactCard"
			methods["2"] = protocol.MethodContactGet
		}
	}
	if snap.session.HasCalendarsCapability() {
		calendarsAccount, err := c.AccountIdForCapability(protocol.CalendarsCapability)
		if err == nil {
			using = append(using, protocol.CalendarsCapability)
			calls = append(calls, protocol.MethodCall{
				Name:      protocol.MethodCalendarEventGet,
				Arguments: protocol.GetRequest{AccountId: calendarsAccount, Ids: []protocol.Id{}},
				CallId:    "3",
			})
			typeByCall["3"] = "CalendarEvent"
			methods["3"] = protocol.MethodCalendarEventGet
		}
	}

	responses, err := c.Do(ctx, using, calls)
	if err != nil {
		return nil, "", err
	}

	states := make(map[string]string, len(typeByCall))
	for callId, typ := range typeByCall {
		r, err := resultFor(responses, callId, methods[callId])
		if err != nil {
			continue
		}
		var result struct {
			State string `json:"state"`
		}
		if unmarshalArguments(r, &result) == nil && result.State != "" {
			states[typ] = result.State
		}
	}

	return states, string(snap.accountId), nil
}
