package handler

import (
	"context"
	"net/http"

	"golang.org/x/exp/slog"
)

// httpContext is wrapper around context.Context that also carries the
// corresponding HTTP request and response writer, as well as an
// optional body reader
type httpContext struct {
	context.Context

	res  http.ResponseWriter
	resC *http.ResponseController
	req  *http.Request
	body *bodyReader
	log  *slog.Logger
}

func (handler *UnroutedHandler) newContext(w http.ResponseWriter, r *http.Request) *httpContext {
	return &httpContext{
		Context: r.Context(),
		res:     w,
		resC:    http.NewResponseController(w),
		req:     r,
		body:    nil, // body can be filled later for PATCH requests
		log:     handler.logger.With("method", r.Method, "path", r.URL.Path, "requestId", getRequestId(r)),
	}
}
