// Package log provides logging with automatic sanitization of sensitive
// values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive header values (cookies, tokens)
//   - Configurable log levels with verbose mode support
//   - An optional per-run execution log written to a file
//
// # Security Features
//
// Site configuration files can carry custom request headers such as
// Authorization or Cookie values for authenticated scrapes. The
// SecureHandler masks those values in log output so a shared or stored
// log never leaks credentials:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, JWTs)
//
// Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // Will be sanitized
//	    "url", "https://example.com",
//	)
//
//	// Tee log output into a per-run execution log file
//	runLog, err := log.NewRunLogger(os.Stderr, "scrape.log", verbose)
//	if err != nil { ... }
//	defer runLog.Close()
//	runLog.Logger.Info("scrape started", "url", url)
package log
