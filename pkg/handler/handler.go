package handler

import (
	"net/http"
)

// Handler is a ready to use handler with routing
type Handler struct {
	*UnroutedHandler
	http.Handler
}

// NewHandler creates a routed upload handler. It expects to be mounted at the
// site root (after stripping Config.BasePath) and serves
//
//	POST  <parent>/@upload       creates a session below <parent>
//	HEAD  <parent>/@upload/<id>  reports the session's offset
//	PATCH <parent>/@upload/<id>  appends a chunk
//
// and OPTIONS for any path. If you are integrating this into an existing app
// you may like to use NewUnroutedHandler instead and route the requests yourself.
func NewHandler(config Config) (*Handler, error) {
	handler, err := NewUnroutedHandler(config)
	if err != nil {
		return nil, err
	}

	routedHandler := &Handler{
		UnroutedHandler: handler,
	}

	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, id, err := extractUploadPath(r.URL.Path)
		if err != nil {
			handler.sendError(handler.newContext(w, r), err)
			return
		}

		switch {
		case id == "":
			// Upload resource of a content object, used for session creation
			switch r.Method {
			case "POST":
				handler.PostFile(w, r)
			default:
				w.Header().Add("Allow", "POST, OPTIONS")
				w.WriteHeader(http.StatusMethodNotAllowed)
				w.Write([]byte(`method not allowed`))
			}
		default:
			// URL points to a session
			switch r.Method {
			case "HEAD":
				handler.HeadFile(w, r)
			case "PATCH":
				handler.PatchFile(w, r)
			default:
				w.Header().Add("Allow", "HEAD, PATCH, OPTIONS")
				w.WriteHeader(http.StatusMethodNotAllowed)
				w.Write([]byte(`method not allowed`))
			}
		}
	})

	routedHandler.Handler = handler.Middleware(mux)

	return routedHandler, nil
}
