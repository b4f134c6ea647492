// Package middleware provides HTTP middleware for the gatewright API
// server: request ID propagation, structured request logging, panic
// recovery, API key authentication, and request rate limiting.
//
// Middleware composes in the standard wrapping order:
//
//	handler = RequestIDMiddleware(LoggingMiddleware(RecoveryMiddleware(mux)))
package middleware
