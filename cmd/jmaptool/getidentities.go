package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
)

// getIdentities lists the sending personas available on the account.
func getIdentities(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Getting identities from %s...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Identity_Id", "Name", "Email", "May_Delete", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	identities, err := c.GetIdentities(ctx)
	if err != nil {
		logger.LogError(slogLogger, "Failed to get identities",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", "", err.Error(),
		})
		return fmt.Errorf("failed to get identities: %w", err)
	}

	fmt.Printf("\nFound %d identities:\n", len(identities))
	for _, id := range identities {
		fmt.Printf("  %s <%s>\n", id.Name, id.Email)

		_ = fileLogger.WriteRow([]string{
			config.Action, "SUCCESS", config.Host,
			id.Id, id.Name, id.Email, fmt.Sprintf("%t", id.MayDelete), "",
		})
	}

	logger.LogInfo(slogLogger, "Get identities completed",
		"host", config.Host,
		"identity_count", len(identities))

	fmt.Println("\n✓ Get identities completed")
	return nil
}
