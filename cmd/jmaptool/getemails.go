package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/client"
	"jmapclient/internal/jmap/entity"
)

var emailColumns = []string{"Action", "Status", "Server", "Email_Id", "Thread_Id", "Subject", "From", "Received_At", "Unread", "Error"}

// getEmails lists emails newest-first, optionally restricted to one mailbox.
func getEmails(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting emails from %s...\n", config.Host)

	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(emailColumns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	page, err := c.GetEmails(ctx, client.GetEmailsOptions{
		MailboxId: config.Mailbox,
		Limit:     uint32(config.Limit),
	})
	if err != nil {
		logger.LogError(slogLogger, "Failed to get emails",
			"error", err,
			"host", config.Host,
			"mailbox", config.Mailbox)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get emails: %w", err)
	}

	if page.Total != nil {
		fmt.Printf("\nFound %d emails (%d total):\n", len(page.Emails), *page.Total)
	} else {
		fmt.Printf("\nFound %d emails:\n", len(page.Emails))
	}
	printEmails(config, fileLogger, page.Emails)

	logger.LogInfo(slogLogger, "Get emails completed",
		"host", config.Host,
		"mailbox", config.Mailbox,
		"email_count", len(page.Emails))

	fmt.Println("\n✓ Get emails completed")
	return nil
}

// searchEmails runs a server-side full-text search.
func searchEmails(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Searching emails on %s for %q...\n", config.Host, config.Query)

	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(emailColumns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	page, err := c.SearchEmails(ctx, config.Query, uint32(config.Limit))
	if err != nil {
		logger.LogError(slogLogger, "Search failed",
			"error", err,
			"host", config.Host,
			"query", config.Query)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("\nFound %d matching emails:\n", len(page.Emails))
	printEmails(config, fileLogger, page.Emails)

	logger.LogInfo(slogLogger, "Search completed",
		"host", config.Host,
		"query", config.Query,
		"email_count", len(page.Emails))

	fmt.Println("\n✓ Search completed")
	return nil
}

// getThread lists every message of a conversation.
func getThread(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting thread %s from %s...\n", config.Thread, config.Host)

	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(emailColumns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	emails, err := c.GetThreadEmails(ctx, config.Thread)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get thread",
			"error", err,
			"host", config.Host,
			"thread", config.Thread)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", config.Thread, "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get thread: %w", err)
	}

	fmt.Printf("\nThread has %d messages:\n", len(emails))
	printEmails(config, fileLogger, emails)

	logger.LogInfo(slogLogger, "Get thread completed",
		"host", config.Host,
		"thread", config.Thread,
		"email_count", len(emails))

	fmt.Println("\n✓ Get thread completed")
	return nil
}

func printEmails(config *Config, fileLogger logger.Logger, emails []entity.Email) {
	fmt.Println("  Received             From                        Subject")
	fmt.Println("  --------             ----                        -------")

	for _, e := range emails {
		from := ""
		if len(e.From) > 0 {
			from = e.From[0].Email
		}
		marker := " "
		if e.IsUnread() {
			marker = "*"
		}
		fmt.Printf("%s %-20s %-27s %s\n",
			marker, e.ReceivedAt.Format("2006-01-02 15:04"), from, e.Subject)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			e.Id, e.ThreadId, e.Subject, from,
			e.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"),
			fmt.Sprintf("%t", e.IsUnread()), "",
		})
	}
}
