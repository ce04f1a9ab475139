// Package httpserver runs an http.Handler with sane timeouts, signal handling
// and graceful shutdown, and provides liveness and readiness handlers.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled or the process receives SIGINT or SIGTERM.
package httpserver
