package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"jmapclient/internal/common/logger"
	"jmapclient/internal/jmap/client"
)

// watch polls the server for state changes and prints each one until the
// context is cancelled (Ctrl+C).
func watch(ctx context.Context, config *Config, fileLogger logger.Logger, slogLogger *slog.Logger) error {
	c := newClient(config, slogLogger)
	fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", config.Host)

	columns := []string{"Action", "Status", "Server", "Account_Id", "Type", "State", "Timestamp", "Error"}
	if shouldWrite, _ := fileLogger.ShouldWriteHeader(); shouldWrite {
		_ = fileLogger.WriteHeader(columns)
	}

	if err := c.Connect(ctx); err != nil {
		_ = fileLogger.WriteRow([]string{
			config.Action, "FAILURE", config.Host, "", "", "", time.Now().Format(time.RFC3339), err.Error(),
		})
		return fmt.Errorf("JMAP discovery failed: %w", err)
	}
	defer c.Disconnect()

	c.OnConnectionError(func(err error) {
		logger.LogWarn(slogLogger, "Connection error while watching",
			"error", err,
			"host", config.Host)
		fmt.Printf("! connection error: %v\n", err)
	})

	c.OnStateChange(func(sc client.StateChange) {
		now := time.Now()

		types := make([]string, 0, len(sc.Changed))
		for t := range sc.Changed {
			types = append(types, t)
		}
		sort.Strings(types)

		for _, t := range types {
			fmt.Printf("%s  %-10s changed (account %s, state %s)\n",
				now.Format("15:04:05"), t, sc.AccountId, sc.Changed[t])

			_ = fileLogger.WriteRow([]string{
				config.Action, "SUCCESS", config.Host,
				sc.AccountId, t, sc.Changed[t], now.Format(time.RFC3339), "",
			})
		}

		logger.LogInfo(slogLogger, "State change",
			"host", config.Host,
			"account_id", sc.AccountId,
			"types", types)
	})

	c.StartPolling()
	defer c.StopPolling()

	fmt.Println("✓ Polling started")
	<-ctx.Done()

	fmt.Println("\n✓ Watch stopped")
	return nil
}
