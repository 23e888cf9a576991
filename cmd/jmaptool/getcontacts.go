package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
)

// getContacts lists address books and the contacts in them.
func getContacts(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting contacts from %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Contact_Id", "Name", "Email", "Phone", "Organization", "Error"}
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

	books, err := c.GetAddressBooks(ctx)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get address books",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get address books: %w", err)
	}

	fmt.Printf("\nAddress books (%d):\n", len(books))
	for _, book := range books {
		fmt.Printf("  %s\n", book.Name)
	}

	contacts, err := c.GetContacts(ctx)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get contacts",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get contacts: %w", err)
	}

	fmt.Printf("\nFound %d contacts:\n", len(contacts))
	for _, contact := range contacts {
		email := ""
		if len(contact.Emails) > 0 {
			email = contact.Emails[0].Value
		}
		phone := ""
		if len(contact.Phones) > 0 {
			phone = contact.Phones[0].Value
		}
		fmt.Printf("  %-30s %-30s %s\n", contact.Name, email, phone)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			contact.Id, contact.Name, email, phone, contact.Organization, "",
		})
	}

	logger.LogInfo(slogLogger, "Get contacts completed",
		"host", config.Host,
		"book_count", len(books),
		"contact_count", len(contacts))

	fmt.Println("\n✓ Get contacts completed")
	return nil
}
