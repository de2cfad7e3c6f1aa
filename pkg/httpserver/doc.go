// Package httpserver runs the FocusFlow HTTP API with sane timeouts and
// graceful shutdown, and provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// Run returns after ctx is cancelled and in-flight requests finish or the
// shutdown timeout elapses.
package httpserver
