package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/common/validation"
	"jmapclient/internal/jmap/client"
	"jmapclient/internal/jmap/entity"
)

// sendEmail composes and submits a message in one shot.
func sendEmail(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Sending email via %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "From", "To", "Subject", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	recipients := parseRecipients(config.To)
	addrs := make([]string, len(recipients))
	for i, r := range recipients {
		addrs[i] = r.Email
	}
	if err := validation.ValidateEmails(addrs, "to"); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, maskUsername(config.Username), config.To, config.Subject, err.Error(),
		})
		return err
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, maskUsername(config.Username), config.To, config.Subject, err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	draft := client.Draft{
		From:     config.Username,
		To:       recipients,
		Subject:  config.Subject,
		TextBody: config.Body,
	}

	if err := c.SendEmail(ctx, draft); err != nil {
		logger.LogError(slogLogger, "Send failed",
			"error", err,
			"host", config.Host,
			"from", maskUsername(config.Username),
			"to", config.To)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, maskUsername(config.Username), config.To, config.Subject, err.Error(),
		})
		return fmt.Errorf("send failed: %w", err)
	}

	logger.LogInfo(slogLogger, "Email sent",
		"host", config.Host,
		"from", maskUsername(config.Username),
		"to", config.To,
		"subject", config.Subject)

	_ = fileLogger.WriteRow([]string{
		config.Action, "SUCCESS", config.Host, maskUsername(config.Username), config.To, config.Subject, "",
	})

	fmt.Printf("\n✓ Email sent to %s\n", config.To)
	return nil
}

// parseRecipients splits a comma separated address list into addresses.
func parseRecipients(list string) []entity.Address {
	var out []entity.Address
	for _, part := range strings.Split(list, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		out = append(out, entity.Address{Email: addr})
	}
	return out
}
