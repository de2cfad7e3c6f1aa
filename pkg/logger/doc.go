// Package logger builds *slog.Logger instances for FocusFlow services.
//
// New takes functional options: WithEnvironment picks text output at debug
// level for development and JSON at info level for staging and production,
// and tags records with the service and env names. WithContextValue and
// WithContextExtractors inject request-scoped values (request id, user id)
// from the context passed to the *Context logging methods.
//
// Attribute helpers such as Error, UserID, Tier and Reason keep key names
// consistent across packages. Error returns an empty attribute for a nil error,
// so it can be passed unconditionally:
//
//	log.InfoContext(ctx, "plan changed", logger.UserID(id), logger.Tier("pro"), logger.Error(err))
package logger
