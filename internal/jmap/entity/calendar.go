package entity

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"jmapclient/internal/jmap/protocol"
)

// Calendar is a named event collection.
type Calendar struct {
	Id           string
	Name         string
	Description  string
	Color        string
	IsSubscribed bool
	IsReadOnly   bool
	SortOrder    uint32
}

// CalendarFromWire maps a wire calendar into the domain. When the server
// omits the subscription flag the calendar is treated as subscribed, since
// servers only list calendars the account can see.
func CalendarFromWire(w protocol.Calendar) Calendar {
	subscribed := true
	if w.IsSubscribed != nil {
		subscribed = *w.IsSubscribed
	}
	readOnly := false
	if w.IsReadOnly != nil {
		readOnly = *w.IsReadOnly
	}
	return Calendar{
		Id:           string(w.Id),
		Name:         w.Name,
		Description:  w.Description,
		Color:        w.Color,
		IsSubscribed: subscribed,
		IsReadOnly:   readOnly,
		SortOrder:    w.SortOrder,
	}
}

// CalendarToWire maps a domain calendar to the wire shape used for creates
// and updates.
func CalendarToWire(c Calendar) protocol.Calendar {
	return protocol.Calendar{
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		SortOrder:   c.SortOrder,
	}
}

// EventParticipant is one attendee or organizer of an event.
type EventParticipant struct {
	Name        string
	Email       string
	IsOrganizer bool
	Status      string
}

// EventAttachment is an external resource linked from an event.
type EventAttachment struct {
	Href string
	Type string
	Name string
}

// EventAlarm is a reminder relative to the event start. A negative offset
// fires before the start.
type EventAlarm struct {
	OffsetSeconds int64
	Action        string
}

// CalendarEvent is the domain view of a JSCalendar event. The wire carries
// start plus an optional duration; EndTime is always derived. Exactly one of
// EndTime/DurationSeconds is authoritative at a time, and the mapper computes
// the other.
type CalendarEvent struct {
	Id         string
	CalendarId string

	Title       string
	Description string
	Location    string

	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int64
	IsAllDay        bool
	Timezone        string

	Recurrence json.RawMessage

	Status       string
	Transparency string
	IsPrivate    bool

	Organizer    *EventParticipant
	Participants []EventParticipant

	Categories  []string
	Priority    int
	Attachments []EventAttachment
	Alarm       *EventAlarm
}

const localDateTimeLayout = "2006-01-02T15:04:05"

func eventLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseLocalDateTime parses a JSCalendar LocalDateTime in the event's zone.
// Malformed values map to the zero time.
func parseLocalDateTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(localDateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseSignedOffset parses an alert trigger offset like "-PT15M".
func parseSignedOffset(s string) int64 {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return -protocol.ParseDuration(rest)
	}
	return protocol.ParseDuration(s)
}

func formatSignedOffset(seconds int64) string {
	if seconds < 0 {
		return "-" + protocol.FormatDuration(-seconds)
	}
	return protocol.FormatDuration(seconds)
}

// EventFromWire maps a wire event into the domain. EndTime derives from
// start plus duration; with no duration it falls back to the start itself
// (a zero-length event) rather than failing.
func EventFromWire(w protocol.CalendarEvent) CalendarEvent {
	loc := eventLocation(w.TimeZone)
	start := parseLocalDateTime(w.Start, loc)

	durationSeconds := protocol.ParseDuration(w.Duration)
	end := start
	if durationSeconds > 0 && !start.IsZero() {
		end = start.Add(time.Duration(durationSeconds) * time.Second)
	}

	var calendarId string
	{
		ids := make([]string, 0, len(w.CalendarIds))
		for id, present := range w.CalendarIds {
			if present {
				ids = append(ids, string(id))
			}
		}
		sort.Strings(ids)
		if len(ids) > 0 {
			calendarId = ids[0]
		}
	}

	transparency := "opaque"
	if w.FreeBusyStatus == "free" {
		transparency = "transparent"
	}

	var organizer *EventParticipant
	var participants []EventParticipant
	for _, k := range sortedKeys(w.Participants) {
		p := w.Participants[k]
		ep := EventParticipant{
			Name:        p.Name,
			Email:       p.Email,
			IsOrganizer: p.Roles["owner"],
			Status:      p.ParticipationStatus,
		}
		if ep.IsOrganizer && organizer == nil {
			o := ep
			organizer = &o
		}
		participants = append(participants, ep)
	}

	var attachments []EventAttachment
	for _, k := range sortedKeys(w.Links) {
		l := w.Links[k]
		attachments = append(attachments, EventAttachment{Href: l.Href, Type: l.Type, Name: l.Name})
	}

	var alarm *EventAlarm
	for _, k := range sortedKeys(w.Alerts) {
		a := w.Alerts[k]
		alarm = &EventAlarm{
			OffsetSeconds: parseSignedOffset(a.Trigger.Offset),
			Action:        a.Action,
		}
		break
	}

	var categories []string
	if len(w.Keywords) > 0 {
		categories = sortedKeys(w.Keywords)
	}

	return CalendarEvent{
		Id:              string(w.Id),
		CalendarId:      calendarId,
		Title:           w.Title,
		Description:     w.Description,
		Location:        w.Location,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: durationSeconds,
		IsAllDay:        w.ShowWithoutTime,
		Timezone:        w.TimeZone,
		Recurrence:      w.RecurrenceRules,
		Status:          w.Status,
		Transparency:    transparency,
		IsPrivate:       w.Privacy == "private" || w.Privacy == "secret",
		Organizer:       organizer,
		Participants:    participants,
		Categories:      categories,
		Priority:        w.Priority,
		Attachments:     attachments,
		Alarm:           alarm,
	}
}

// EventToWire maps a domain event back to the wire shape. DurationSeconds
// wins when set; otherwise the duration derives from EndTime minus StartTime.
func EventToWire(e CalendarEvent) protocol.CalendarEvent {
	loc := eventLocation(e.Timezone)

	durationSeconds := e.DurationSeconds
	if durationSeconds <= 0 && e.EndTime.After(e.StartTime) {
		durationSeconds = int64(e.EndTime.Sub(e.StartTime) / time.Second)
	}

	w := protocol.CalendarEvent{
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		TimeZone:        e.Timezone,
		ShowWithoutTime: e.IsAllDay,
		Status:          e.Status,
		RecurrenceRules: e.Recurrence,
		Priority:        e.Priority,
	}

	if e.CalendarId != "" {
		w.CalendarIds = map[protocol.Id]bool{protocol.Id(e.CalendarId): true}
	}
	if !e.StartTime.IsZero() {
		w.Start = e.StartTime.In(loc).Format(localDateTimeLayout)
	}
	if durationSeconds > 0 {
		w.Duration = protocol.FormatDuration(durationSeconds)
	}
	if e.Transparency == "transparent" {
		w.FreeBusyStatus = "free"
	}
	if e.IsPrivate {
		w.Privacy = "private"
	}

	if len(e.Participants) > 0 || e.Organizer != nil {
		w.Participants = make(map[string]protocol.Participant)
		seen := false
		for i, p := range e.Participants {
			roles := map[string]bool{"attendee": true}
			if p.IsOrganizer {
				roles = map[string]bool{"owner": true}
				seen = true
			}
			w.Participants[participantKey(i)] = protocol.Participant{
				Name:                p.Name,
				Email:               p.Email,
				Roles:               roles,
				ParticipationStatus: p.Status,
			}
		}
		if e.Organizer != nil && !seen {
			w.Participants["organizer"] = protocol.Participant{
				Name:  e.Organizer.Name,
				Email: e.Organizer.Email,
				Roles: map[string]bool{"owner": true},
			}
		}
	}

	if len(e.Categories) > 0 {
		w.Keywords = make(map[string]bool, len(e.Categories))
		for _, c := range e.Categories {
			w.Keywords[c] = true
		}
	}

	if len(e.Attachments) > 0 {
		w.Links = make(map[string]protocol.EventLink, len(e.Attachments))
		for i, a := range e.Attachments {
			w.Links[linkKey(i)] = protocol.EventLink{Href: a.Href, Type: a.Type, Name: a.Name}
		}
	}

	if e.Alarm != nil {
		w.Alerts = map[string]protocol.Alert{
			"alert-0": {
				Trigger: protocol.AlertTrigger{
					Type:   "OffsetTrigger",
					Offset: formatSignedOffset(e.Alarm.OffsetSeconds),
				},
				Action: e.Alarm.Action,
			},
		}
	}

	return w
}

func participantKey(i int) string {
	return "participant-" + strconv.Itoa(i)
}

func linkKey(i int) string {
	return "link-" + strconv.Itoa(i)
}
