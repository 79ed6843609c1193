package handler

import (
	"context"
)

// HookEvent represents an event from the upload handler which can be handled
// by the application.
type HookEvent struct {
	Context context.Context `json:"-"`
	// Upload contains information about the session that caused this hook
	// to be fired.
	Upload SessionInfo
	// Parent is the path of the content below which the session was created,
	// relative to the site root.
	Parent string
	// Location is the absolute URL of the content object created from the
	// session. It is only set for finalized sessions.
	Location string
	// HTTPRequest contains details about the HTTP request that reached
	// the handler.
	HTTPRequest HTTPRequest
}

func newHookEvent(c *httpContext, info SessionInfo, parent string) HookEvent {
	// The Host header field is not present in the header map, see https://pkg.go.dev/net/http#Request:
	// > For incoming requests, the Host header is promoted to the
	// > Request.Host field and removed from the Header map.
	// That's why we add it back manually.
	c.req.Header.Set("Host", c.req.Host)

	return HookEvent{
		Context: c,
		Upload:  info,
		Parent:  parent,
		HTTPRequest: HTTPRequest{
			Method:     c.req.Method,
			URI:        c.req.RequestURI,
			RemoteAddr: c.req.RemoteAddr,
			Header:     c.req.Header,
		},
	}
}
