// Package middleware holds gin middleware for the HTTP gateway: CORS,
// per-client token-bucket rate limiting and request ids.
package middleware
