// Package middleware holds the HTTP middleware of the reconciliation server:
// request trace ids, rate limiting, upload size limits and security headers.
// Request logging and panic recovery live in the errors package.
package middleware
