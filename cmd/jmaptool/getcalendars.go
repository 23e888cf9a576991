package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/client"
)

// getCalendars lists the calendars on the account.
func getCalendars(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting calendars from %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Calendar_Id", "Name", "Color", "Subscribed", "Read_Only", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	calendars, err := c.GetCalendars(ctx)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get calendars",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get calendars: %w", err)
	}

	fmt.Printf("\nFound %d calendars:\n", len(calendars))
	for _, cal := range calendars {
		flags := ""
		if !cal.IsSubscribed {
			flags += " (unsubscribed)"
		}
		if cal.IsReadOnly {
			flags += " (read-only)"
		}
		fmt.Printf("  %-30s %s%s\n", cal.Name, cal.Color, flags)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			cal.Id, cal.Name, cal.Color,
			fmt.Sprintf("%t", cal.IsSubscribed), fmt.Sprintf("%t", cal.IsReadOnly), "",
		})
	}

	logger.LogInfo(slogLogger, "Get calendars completed",
		"host", config.Host,
		"calendar_count", len(calendars))

	fmt.Println("\n✓ Get calendars completed")
	return nil
}

// getEvents lists calendar events, optionally restricted to one calendar.
func getEvents(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting events from %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Event_Id", "Calendar_Id", "Title", "Start", "End", "Location", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	events, err := c.GetCalendarEvents(ctx, client.GetEventsOptions{CalendarId: config.Calendar})
	if err != nil {
		logger.LogError(slogLogger, "Failed to get events",
			"error", err,
			"host", config.Host,
			"calendar", config.Calendar)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", config.Calendar, "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get events: %w", err)
	}

	fmt.Printf("\nFound %d events:\n", len(events))
	fmt.Println("  Start                End                  Title")
	fmt.Println("  -----                ---                  -----")

	const layout = "2006-01-02 15:04"
	for _, ev := range events {
		fmt.Printf("  %-20s %-20s %s\n",
			ev.StartTime.Format(layout), ev.EndTime.Format(layout), ev.Title)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			ev.Id, ev.CalendarId, ev.Title,
			ev.StartTime.Format("2006-01-02T15:04:05"),
			ev.EndTime.Format("2006-01-02T15:04:05"),
			ev.Location, "",
		})
	}

	logger.LogInfo(slogLogger, "Get events completed",
		"host", config.Host,
		"calendar", config.Calendar,
		"event_count", len(events))

	fmt.Println("\n✓ Get events completed")
	return nil
}
