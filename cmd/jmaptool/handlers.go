package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
)

// executeAction dispatches to the appropriate handler based on action.
func executeAction(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	switch config.Action {
	case "testconnect":
		return testConnect(ctx, config, fileLogger, slogLogger)
	case "testauth":
		return testAuth(ctx, config, fileLogger, slogLogger)
	case "getmailboxes":
		return getMailboxes(ctx, config, fileLogger, slogLogger)
	case "getemails":
		return getEmails(ctx, config, fileLogger, slogLogger)
	case "searchemails":
		return searchEmails(ctx, config, fileLogger, slogLogger)
	case "getthread":
		return getThread(ctx, config, fileLogger, slogLogger)
	case "getidentities":
		return getIdentities(ctx, config, fileLogger, slogLogger)
	case "getcontacts":
		return getContacts(ctx, config, fileLogger, slogLogger)
	case "getcalendars":
		return getCalendars(ctx, config, fileLogger, slogLogger)
	case "getevents":
		return getEvents(ctx, config, fileLogger, slogLogger)
	case "sendemail":
		return sendEmail(ctx, config, fileLogger, slogLogger)
	case "watch":
		return watch(ctx, config, fileLogger, slogLogger)
	default:
		return fmt.Errorf("unknown action: %s", config.Action)
	}
}
