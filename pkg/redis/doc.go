// Package redis connects to Redis with go-redis and exposes a readiness probe.
// The FocusFlow usage counter in svc/usage is built on the client it returns.
package redis
