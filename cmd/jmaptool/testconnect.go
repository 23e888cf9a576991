package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jmapclient/internal/common/logger"
)

// testConnect tests JMAP server connectivity by discovering the session.
func testConnect(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Testing JMAP connectivity to %s...\n", config.Host)
	fmt.Printf("Discovery URL: %s\n", c.DiscoveryURL())

	columns := []string{"Action", "Status", "Server", "Port", "Discovery_URL", "API_URL", "Capabilities", "Accounts", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		logger.LogError(slogLogger, "JMAP discovery failed",
			"error", err,
			"host", config.Host)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			c.DiscoveryURL(), "", "", "", err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	session, err := c.Session()
	if err != nil {
		return err
	}

	fmt.Println("✓ JMAP session discovered successfully")
	fmt.Printf("\nSession Information:\n")
	fmt.Printf("  API URL:      %s\n", session.APIURL)
	fmt.Printf("  Username:     %s\n", session.Username)
	fmt.Printf("  Accounts:     %d\n", session.GetAccountCount())

	caps := session.GetCapabilityNames()
	fmt.Printf("  Capabilities: %d\n", len(caps))
	for _, cap := range caps {
		fmt.Printf("    - %s\n", cap)
	}

	if session.GetAccountCount() > 0 {
		fmt.Printf("\nAccounts:\n")
		for id, account := range session.Accounts {
			fmt.Printf("  %s: %s\n", id, account.Name)
		}
	}

	_ = fileLogger.WriteRow([]string{
		config.Action, "SUCCESS", config.Host, fmt.Sprintf("%d", config.Port),
		c.DiscoveryURL(), session.APIURL, strings.Join(caps, "; "),
		fmt.Sprintf("%d", session.GetAccountCount()), "",
	})

	logger.LogInfo(slogLogger, "JMAP connectivity test completed",
		"host", config.Host,
		"api_url", session.APIURL,
		"capabilities", len(caps),
		"accounts", session.GetAccountCount())

	fmt.Println("\n✓ JMAP connectivity test completed")
	return nil
}
