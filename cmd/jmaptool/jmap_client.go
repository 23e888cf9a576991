package main

import (
	"log/slog"

	"jmapclient/internal/jmap/client"
)

// newClient builds a connected-capable JMAP client from the CLI config.
func newClient(config *Config, slogLogger *slog.Logger) *client.Client {
	return client.New(client.Config{
		Host:        config.Host,
		Port:        config.Port,
		Username:    config.Username,
		Password:    config.Password,
		AccessToken: config.AccessToken,
		AuthMethod:  config.AuthMethod,
		SkipVerify:  config.SkipVerify,
		ProxyURL:    config.ProxyURL,
		RateLimit:   config.RateLimit,
		Logger:      slogLogger,
	})
}

// authMethodName reports which authentication method the client will pick,
// for display before connecting.
func authMethodName(config *Config) string {
	if config.AuthMethod != "auto" {
		return config.AuthMethod
	}
	if config.AccessToken != "" {
		return "bearer"
	}
	if config.Password != "" {
		return "basic"
	}
	return "none"
}
