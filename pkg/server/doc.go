// Package server exposes the escaping engine over HTTP and WebSocket.
//
// Routes:
//
//	POST /v1/escape            {"context","input"}             -> {"output"}
//	POST /v1/unescape          {"context"|"introducer","input"} -> {"output"}
//	POST /v1/validate/url      {"input"}                       -> {"output","accepted"}
//	POST /v1/validate/css-url  {"input"}                       -> {"output","accepted"}
//	POST /v1/split             {"input","separator","max"}     -> {"entries"}
//	GET  /v1/stream            WebSocket, one escape per text frame
//	GET  /healthz
//	GET  /metrics              when metrics are enabled
//
// Failures are written as the JSON form of *errors.Error. Malformed input,
// unknown contexts and invalid arguments are 400; bodies over the configured
// limit and output over the buffer limit are 413; anything else is 500.
//
// Every operation runs through the middleware chain, so it is counted by the
// Prometheus middleware and traced by the OpenTelemetry middleware when those
// are enabled in the configuration.
//
// Example:
//
//	srv, err := server.New(cfg, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
