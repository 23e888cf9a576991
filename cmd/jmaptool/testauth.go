package main

import (
	"context"
	"fmt"
	"log/slog"

	"jmapclient/internal/common/logger"
)

// testAuth tests JMAP authentication.
func testAuth(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	authMethod := authMethodName(config)

	fmt.Printf("Testing JMAP authentication to %s...\n", config.Host)
	fmt.Printf("Discovery URL: %s\n", c.DiscoveryURL())
	fmt.Printf("Username: %s\n", config.Username)
	fmt.Printf("Auth method: %s\n", authMethod)

	columns := []string{"Action", "Status", "Server", "Port", "Username", "Auth_Method", "API_URL", "Accounts", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		logger.LogError(slogLogger, "JMAP authentication failed",
			"error", err,
			"host", config.Host,
			"username", maskUsername(config.Username),
			"auth_method", authMethod)

		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, fmt.Sprintf("%d", config.Port),
			maskUsername(config.Username), authMethod, "", "", err.Error(),
		})
		return fmt.Errorf("JMAP authentication failed: %w", err)
	}
	defer c.Disconnect()

	session, err := c.Session()
	if err != nil {
		return err
	}

	fmt.Println("✓ Authentication successful")
	fmt.Printf("\nSession Information:\n")
	fmt.Printf("  API URL:      %s\n", session.APIURL)
	fmt.Printf("  Username:     %s\n", session.Username)
	fmt.Printf("  Accounts:     %d\n", session.GetAccountCount())

	caps := session.GetCapabilityNames()
	fmt.Printf("  Capabilities: %d\n", len(caps))

	if session.HasMailCapability() {
		fmt.Println("  ✓ Mail capability supported")
	}
	if c.SupportsEmailSubmission() {
		fmt.Println("  ✓ Submission capability supported")
	}
	if c.SupportsCalendars() {
		fmt.Println("  ✓ Calendars capability supported")
	}
	if c.SupportsContacts() {
		fmt.Println("  ✓ Contacts capability supported")
	}

	if session.GetAccountCount() > 0 {
		fmt.Printf("\nAccounts:\n")
		for id, account := range session.Accounts {
			fmt.Printf("  %s: %s", id, account.Name)
			if account.IsPersonal {
				fmt.Printf(" (personal)")
			}
			if account.IsReadOnly {
				fmt.Printf(" (read-only)")
			}
			fmt.Println()
		}
	}

	if accountId, err := c.AccountId(); err == nil {
		fmt.Printf("\nDefault account: %s\n", accountId)
	}
	if exp, ok := c.TokenExpiry(); ok {
		fmt.Printf("Token expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}

	_ = fileLogger.WriteRow([]string{
		config.Action, "SUCCESS", config.Host, fmt.Sprintf("%d", config.Port),
		maskUsername(config.Username), authMethod, session.APIURL,
		fmt.Sprintf("%d", session.GetAccountCount()), "",
	})

	logger.LogInfo(slogLogger, "JMAP authentication test completed",
		"host", config.Host,
		"username", maskUsername(config.Username),
		"auth_method", authMethod,
		"accounts", session.GetAccountCount(),
		"has_mail", session.HasMailCapability())

	fmt.Println("\n✓ JMAP authentication test completed")
	return nil
}
