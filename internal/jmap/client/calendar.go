package client

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jmapclient/internal/jmap/entity"
	"jmapclient/internal/jmap/protocol"
)

// GetCalendars lists the calendars on the calendars account.
func (c *Client) GetCalendars(ctx context.Context) ([]entity.Calendar, error) {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return nil, err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return nil, err
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodCalendarGet,
			Arguments: protocol.GetRequest{AccountId: accountId},
			CallId:    "0",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "0", protocol.MethodCalendarGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.Calendar `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}

	calendars := make([]entity.Calendar, 0, len(result.List))
	for _, w := range result.List {
		calendars = append(calendars, entity.CalendarFromWire(w))
	}
	return calendars, nil
}

// CreateCalendar creates a calendar and returns the new id.
func (c *Client) CreateCalendar(ctx context.Context, calendar entity.Calendar) (string, error) {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return "", err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return "", err
	}

	creationId := "cal-" + uuid.NewString()
	set := protocol.SetRequest{
		AccountId: accountId,
		Create:    map[string]interface{}{creationId: entity.CalendarToWire(calendar)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return "", err
	}
	setResp, err := setResultFor(responses, "0", protocol.MethodCalendarSet)
	if err != nil {
		return "", err
	}

	id := setResp.CreatedId(creationId)
	if id == "" {
		return "", &ProtocolError{Reason: "calendar created but no id returned"}
	}
	return string(id), nil
}

// UpdateCalendar replaces an existing calendar's fields.
func (c *Client) UpdateCalendar(ctx context.Context, calendar entity.Calendar) error {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return err
	}
	if calendar.Id == "" {
		return &NotFoundError{Kind: "calendar", Id: ""}
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return err
	}

	set := protocol.SetRequest{
		AccountId: accountId,
		Update:    map[protocol.Id]interface{}{protocol.Id(calendar.Id): entity.CalendarToWire(calendar)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodCalendarSet)
	return err
}

// DeleteCalendar destroys a calendar and everything in it.
func (c *Client) DeleteCalendar(ctx context.Context, id string) error {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return err
	}

	set := protocol.SetRequest{
		AccountId: accountId,
		Destroy:   []protocol.Id{protocol.Id(id)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodCalendarSet)
	return err
}

// GetEventsOptions narrows an event listing. Zero times mean no bound; the
// time filter is optional because not every server implements it.
type GetEventsOptions struct {
	CalendarId string
	After      time.Time
	Before     time.Time
}

// GetCalendarEvents lists events, optionally restricted to one calendar and
// a time window, joining query and get with a back-reference.
func (c *Client) GetCalendarEvents(ctx context.Context, opts GetEventsOptions) ([]entity.CalendarEvent, error) {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return nil, err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return nil, err
	}

	filter := map[string]interface{}{}
	if opts.CalendarId != "" {
		filter["inCalendars"] = []string{opts.CalendarId}
	}
	if !opts.After.IsZero() {
		filter["after"] = opts.After.UTC().Format("2006-01-02T15:04:05")
	}
	if !opts.Before.IsZero() {
		filter["before"] = opts.Before.UTC().Format("2006-01-02T15:04:05")
	}

	query := protocol.QueryRequest{AccountId: accountId}
	if len(filter) > 0 {
		query.Filter = filter
	}

	calls := []protocol.MethodCall{
		{
			Name:      protocol.MethodCalendarEventQuery,
			Arguments: query,
			CallId:    "0",
		},
		{
			Name: protocol.MethodCalendarEventGet,
			Arguments: map[string]interface{}{
				"accountId": accountId,
				"#ids":      protocol.BackReference("0", protocol.MethodCalendarEventQuery, "/ids"),
			},
			CallId: "1",
		},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return nil, err
	}
	r, err := resultFor(responses, "1", protocol.MethodCalendarEventGet)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []protocol.CalendarEvent `json:"list"`
	}
	if err := unmarshalArguments(r, &result); err != nil {
		return nil, err
	}

	events := make([]entity.CalendarEvent, 0, len(result.List))
	for _, w := range result.List {
		events = append(events, entity.EventFromWire(w))
	}
	return events, nil
}

// CreateCalendarEvent creates an event and returns the new id.
func (c *Client) CreateCalendarEvent(ctx context.Context, event entity.CalendarEvent) (string, error) {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return "", err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return "", err
	}

	creationId := "event-" + uuid.NewString()
	set := protocol.SetRequest{
		AccountId: accountId,
		Create:    map[string]interface{}{creationId: entity.EventToWire(event)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarEventSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return "", err
	}
	setResp, err := setResultFor(responses, "0", protocol.MethodCalendarEventSet)
	if err != nil {
		return "", err
	}

	id := setResp.CreatedId(creationId)
	if id == "" {
		return "", &ProtocolError{Reason: "event created but no id returned"}
	}
	return string(id), nil
}

// UpdateCalendarEvent replaces an existing event's fields.
func (c *Client) UpdateCalendarEvent(ctx context.Context, event entity.CalendarEvent) error {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return err
	}
	if event.Id == "" {
		return &NotFoundError{Kind: "event", Id: ""}
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return err
	}

	wire := entity.EventToWire(event)
	set := protocol.SetRequest{
		AccountId: accountId,
		Update:    map[protocol.Id]interface{}{protocol.Id(event.Id): wire},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarEventSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodCalendarEventSet)
	return err
}

// DeleteCalendarEvent destroys an event.
func (c *Client) DeleteCalendarEvent(ctx context.Context, id string) error {
	if err := c.requireCapability(protocol.CalendarsCapability); err != nil {
		return err
	}
	accountId, err := c.AccountIdForCapability(protocol.CalendarsCapability)
	if err != nil {
		return err
	}

	set := protocol.SetRequest{
		AccountId: accountId,
		Destroy:   []protocol.Id{protocol.Id(id)},
	}
	calls := []protocol.MethodCall{
		{Name: protocol.MethodCalendarEventSet, Arguments: set, CallId: "0"},
	}
	responses, err := c.Do(ctx, []string{protocol.CoreCapability, protocol.CalendarsCapability}, calls)
	if err != nil {
		return err
	}
	_, err = setResultFor(responses, "0", protocol.MethodCalendarEventSet)
	return err
}
