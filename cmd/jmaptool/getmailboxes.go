package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
)

// getMailboxes retrieves and displays the list of mailboxes, including
// shared-account mailboxes with their namespaced ids.
func getMailboxes(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting mailboxes from %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Mailbox_Id", "Mailbox_Name", "Role", "Total_Emails", "Unread_Emails", "Parent_Id", "Account", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		logger.LogError(slogLogger, "JMAP discovery failed",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	fmt.Println("✓ Session discovered")

	mailboxes, err := c.GetMailboxes(ctx)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get mailboxes",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get mailboxes: %w", err)
	}

	fmt.Printf("\nFound %d mailboxes:\n", len(mailboxes))
	fmt.Println("  Name                              Role            Total   Unread")
	fmt.Println("  ----                              ----            -----   ------")

	for _, mb := range mailboxes {
		role := mb.Role
		if role == "" {
			role = "-"
		}
		name := mb.Name
		if mb.IsShared {
			name = name + " [" + mb.AccountName + "]"
		}
		fmt.Printf("  %-34s %-14s %6d   %6d\n", name, role, mb.TotalEmails, mb.UnreadEmails)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			mb.Id, mb.Name, role,
			fmt.Sprintf("%d", mb.TotalEmails), fmt.Sprintf("%d", mb.UnreadEmails),
			mb.ParentId, mb.AccountId, "",
		})
	}

	logger.LogInfo(slogLogger, "Get mailboxes completed",
		"host", config.Host,
		"mailbox_count", len(mailboxes))

	fmt.Println("\n✓ Get mailboxes completed")
	return nil
}
