// Package clientip resolves the originating client IP of an HTTP request.
//
// A Resolver trusts only the proxy headers it was built with and falls back to
// RemoteAddr. Middleware stores the result in the request context, where rate
// limiters (FromContext) and loggers (LoggerExtractor) pick it up.
//
//	ips := clientip.NewResolver(clientip.HeaderXForwardedFor)
//	r.Use(ips.Middleware)
package clientip
