package main

import "jmapclient/internal/common/security"

// Masking helpers for log output. Thin wrappers so handlers don't import the
// security package everywhere.

func maskUsername(username string) string {
	return security.MaskUsername(username)
}

func maskPassword(password string) string {
	return security.MaskPassword(password)
}

func maskAccessToken(token string) string {
	return security.MaskAccessToken(token)
}
