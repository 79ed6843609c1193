package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FHNW/plone.restapi/internal/uid"
	"golang.org/x/exp/slog"
)

const (
	// TusVersion is the only protocol version spoken by the handler.
	TusVersion = "1.0.0"
	// TusExtensions lists the protocol extensions advertised in OPTIONS responses.
	TusExtensions = "creation,expiration"
	// UploadSegment is the path segment which addresses the upload resource
	// below a content object, e.g. /folder/@upload.
	UploadSegment = "@upload"
	// OffsetContentType is the only content type accepted for PATCH bodies.
	OffsetContentType = "application/offset+octet-stream"
)

var (
	reUploadPath     = regexp.MustCompile(`^/?(?:(.+?)/)?` + UploadSegment + `(?:/([^/]+))?/?$`)
	reForwardedHost  = regexp.MustCompile(`host="?([^;"]+)`)
	reForwardedProto = regexp.MustCompile(`proto=(https?)`)
)

var (
	ErrUnsupportedVersion  = NewError("ERR_UNSUPPORTED_VERSION", "Unsupported version", http.StatusPreconditionFailed).withHeader("Tus-Version", TusVersion)
	ErrMaxSizeExceeded     = NewError("ERR_MAX_SIZE_EXCEEDED", "Maximum size exceeded", http.StatusRequestEntityTooLarge)
	ErrInvalidContentType  = NewError("ERR_INVALID_CONTENT_TYPE", "Missing or invalid Content-Type header", http.StatusBadRequest)
	ErrInvalidUploadLength = NewError("ERR_INVALID_UPLOAD_LENGTH", "Missing or invalid Upload-Length header", http.StatusBadRequest)
	ErrInvalidOffset       = NewError("ERR_INVALID_OFFSET", "Missing or invalid Upload-Offset header", http.StatusBadRequest)
	ErrNotFound            = NewError("ERR_UPLOAD_NOT_FOUND", "", http.StatusNotFound)
	ErrFileLocked          = NewError("ERR_UPLOAD_LOCKED", "Upload currently locked", http.StatusLocked)
	ErrLockTimeout         = NewError("ERR_LOCK_TIMEOUT", "Failed to acquire lock before timeout", http.StatusInternalServerError)
	ErrMismatchOffset      = NewError("ERR_MISMATCHED_OFFSET", "Mismatched offset", http.StatusConflict)
	ErrSizeExceeded        = NewError("ERR_UPLOAD_SIZE_EXCEEDED", "Upload's size exceeded", http.StatusRequestEntityTooLarge)
	ErrNotImplemented      = NewError("ERR_NOT_IMPLEMENTED", "Not implemented", http.StatusNotImplemented)
	ErrUnexpectedEOF       = NewError("ERR_UNEXPECTED_EOF", "Server expected to receive more bytes", http.StatusBadRequest)
	ErrUploadInterrupted   = NewError("ERR_UPLOAD_INTERRUPTED", "Upload has been interrupted by another request for this upload resource", http.StatusBadRequest)
	ErrServerShutdown      = NewError("ERR_SERVER_SHUTDOWN", "Request has been interrupted because the server is shutting down", http.StatusInternalServerError)
	ErrOriginNotAllowed    = NewError("ERR_ORIGIN_NOT_ALLOWED", "Request origin is not allowed", http.StatusForbidden)
	ErrReadTimeout         = NewError("ERR_READ_TIMEOUT", "Timeout while reading request body", http.StatusInternalServerError)
	ErrConnectionReset     = NewError("ERR_CONNECTION_RESET", "TCP connection reset by peer", http.StatusInternalServerError)
)

// UnroutedHandler exposes methods to handle requests as part of the tus protocol,
// such as PostFile, HeadFile and PatchFile. OPTIONS requests are answered by
// the Middleware.
type UnroutedHandler struct {
	config        Config
	composer      *StoreComposer
	isBasePathAbs bool
	basePath      string
	logger        *slog.Logger
	serverCtx     chan struct{}

	// CompleteUploads is used to send notifications whenever a session has
	// been finalized into a content object. The HookEvent will contain the
	// session's information and the content's location. Sending to this
	// channel will only happen if the NotifyCompleteUploads field is set to
	// true in the Config structure.
	CompleteUploads chan HookEvent
	// CreatedUploads is used to send notifications about sessions having been
	// created. It facilitates the post-create hook. Sending to this channel
	// will only happen if the NotifyCreatedUploads field is set to true in the
	// Config structure.
	CreatedUploads chan HookEvent
	// Metrics provides numbers of the usage for this handler.
	Metrics Metrics
}

// NewUnroutedHandler creates a new handler without routing using the given
// configuration. It exposes the http handlers which need to be combined with
// a router (aka mux) of your choice. If you are looking for preconfigured
// handler see NewHandler.
func NewUnroutedHandler(config Config) (*UnroutedHandler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	handler := &UnroutedHandler{
		config:          config,
		composer:        config.StoreComposer,
		basePath:        config.BasePath,
		isBasePathAbs:   config.isAbs,
		CompleteUploads: make(chan HookEvent),
		CreatedUploads:  make(chan HookEvent),
		logger:          config.Logger,
		Metrics:         newMetrics(),
		serverCtx:       make(chan struct{}),
	}

	return handler, nil
}

// InterruptRequestHandling attempts to interrupt long running requests, so
// the server can shutdown gracefully. This function should not be used on
// its own, but as part of http.Server.Shutdown. For example:
//
//	server := &http.Server{
//		Handler: handler,
//	}
//	server.RegisterOnShutdown(handler.InterruptRequestHandling)
//	server.Shutdown(ctx)
//
// Only PATCH requests which are currently reading their body are interrupted.
func (handler *UnroutedHandler) InterruptRequestHandling() {
	close(handler.serverCtx)
}

// SupportedExtensions returns a comma-separated list of the supported tus extensions.
func (handler *UnroutedHandler) SupportedExtensions() string {
	return TusExtensions
}

// Middleware checks various aspects of the request and ensures that it
// conforms with the protocol. Also handles method overriding for clients which
// cannot make PATCH requests. If you are using the handlers directly you will
// need to wrap at least the POST and PATCH endpoints in this middleware.
func (handler *UnroutedHandler) Middleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := handler.newContext(w, r)

		// Allow overriding the HTTP method. The reason for this is
		// that some libraries/environments do not support PATCH
		// requests, e.g. parts of Java.
		if newMethod := r.Header.Get("X-HTTP-Method-Override"); r.Method == "POST" && newMethod != "" {
			r.Method = newMethod
		}

		handler.logger.Info("RequestIncoming", "method", r.Method, "path", r.URL.Path, "requestId", getRequestId(r))

		handler.Metrics.incRequestsTotal(r.Method)

		header := w.Header()

		cors := handler.config.Cors
		if origin := r.Header.Get("Origin"); !cors.Disable && origin != "" {
			if !cors.AllowOrigin.MatchString(origin) {
				handler.sendError(c, ErrOriginNotAllowed)
				return
			}

			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Vary", "Origin")

			if cors.AllowCredentials {
				header.Add("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				// Preflight request
				header.Add("Access-Control-Allow-Methods", cors.AllowMethods)
				header.Add("Access-Control-Allow-Headers", cors.AllowHeaders)
				header.Set("Access-Control-Max-Age", cors.MaxAge)
			} else {
				// Actual request
				header.Add("Access-Control-Expose-Headers", cors.ExposeHeaders)
			}
		}

		header.Set("Tus-Resumable", TusVersion)

		// Add nosniff to all responses https://golang.org/src/net/http/server.go#L1429
		header.Set("X-Content-Type-Options", "nosniff")

		// Protocol discovery. Browsers only accept 200 OK as a successful
		// response to a preflight request, so 204 is not used here.
		if r.Method == "OPTIONS" {
			if handler.config.MaxSize > 0 {
				header.Set("Tus-Max-Size", strconv.FormatInt(handler.config.MaxSize, 10))
			}

			header.Set("Tus-Version", TusVersion)
			header.Set("Tus-Extension", TusExtensions)

			handler.sendResp(c, HTTPResponse{
				StatusCode: http.StatusOK,
			})
			return
		}

		// HEAD and PATCH requests check the version themselves, after the
		// session has been resolved, so unknown sessions yield 404 regardless
		// of the header.
		if r.Method != "GET" && r.Method != "HEAD" && r.Method != "PATCH" && r.Header.Get("Tus-Resumable") != TusVersion {
			handler.sendError(c, ErrUnsupportedVersion)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// PostFile creates a new upload session below the content addressed by the
// request path after validating the length and parsing the metadata.
func (handler *UnroutedHandler) PostFile(w http.ResponseWriter, r *http.Request) {
	c := handler.newContext(w, r)

	parent, _, err := extractUploadPath(r.URL.Path)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	size, err := strconv.ParseInt(r.Header.Get("Upload-Length"), 10, 64)
	if err != nil || size < 0 {
		handler.sendError(c, ErrInvalidUploadLength)
		return
	}

	// Test whether the size is still allowed
	if handler.config.MaxSize > 0 && size > handler.config.MaxSize {
		handler.sendError(c, ErrMaxSizeExceeded)
		return
	}

	info := SessionInfo{
		ID:       uid.Uid(),
		Length:   size,
		MetaData: ParseMetadataHeader(r.Header.Get("Upload-Metadata")),
	}

	session, err := handler.composer.Core.NewSession(c, info)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	info, err = session.GetInfo(c)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	expires, err := session.ExpiresAt(c)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	url := handler.absURL(r, joinPath(parent, UploadSegment, info.ID))

	handler.Metrics.incSessionsCreated()
	c.log.Info("SessionCreated", "id", info.ID, "length", info.Length, "url", url)

	if handler.config.NotifyCreatedUploads {
		handler.CreatedUploads <- newHookEvent(c, info, parent)
	}

	handler.sendResp(c, HTTPResponse{
		StatusCode: http.StatusCreated,
		Header: HTTPHeader{
			"Location":       url,
			"Upload-Expires": formatExpires(expires),
		},
	})
}

// HeadFile returns the length and offset for the HEAD request
func (handler *UnroutedHandler) HeadFile(w http.ResponseWriter, r *http.Request) {
	c := handler.newContext(w, r)

	_, id, err := extractUploadPath(r.URL.Path)
	if err == nil && id == "" {
		err = ErrNotFound
	}
	if err != nil {
		handler.sendError(c, err)
		return
	}

	if handler.composer.UsesLocker {
		lock, err := handler.lockUpload(c, id)
		if err != nil {
			handler.sendError(c, err)
			return
		}

		defer lock.Unlock()
	}

	session, err := handler.composer.Core.GetSession(c, id)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	if r.Header.Get("Tus-Resumable") != TusVersion {
		handler.sendError(c, ErrUnsupportedVersion)
		return
	}

	info, err := session.GetInfo(c)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	expires, err := session.ExpiresAt(c)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	resp := HTTPResponse{
		StatusCode: http.StatusOK,
		Header: HTTPHeader{
			"Cache-Control":  "no-store",
			"Upload-Offset":  strconv.FormatInt(info.Offset, 10),
			"Upload-Length":  strconv.FormatInt(info.Length, 10),
			"Upload-Expires": formatExpires(expires),
		},
	}

	if len(info.MetaData) != 0 {
		resp.Header["Upload-Metadata"] = SerializeMetadataHeader(info.MetaData)
	}

	handler.sendResp(c, resp)
}

// PatchFile appends a chunk to a session. Once the session's offset reaches
// its declared length, the session is finalized into a content object before
// the response is sent.
func (handler *UnroutedHandler) PatchFile(w http.ResponseWriter, r *http.Request) {
	c := handler.newContext(w, r)

	parent, id, err := extractUploadPath(r.URL.Path)
	if err == nil && id == "" {
		err = ErrNotFound
	}
	if err != nil {
		handler.sendError(c, err)
		return
	}

	if handler.composer.UsesLocker {
		lock, err := handler.lockUpload(c, id)
		if err != nil {
			handler.sendError(c, err)
			return
		}

		defer lock.Unlock()
	}

	session, err := handler.composer.Core.GetSession(c, id)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	if r.Header.Get("Tus-Resumable") != TusVersion {
		handler.sendError(c, ErrUnsupportedVersion)
		return
	}

	// Check for presence of application/offset+octet-stream
	if r.Header.Get("Content-Type") != OffsetContentType {
		handler.sendError(c, ErrInvalidContentType)
		return
	}

	// Check for presence of a valid Upload-Offset Header
	offset, err := strconv.ParseInt(r.Header.Get("Upload-Offset"), 10, 64)
	if err != nil || offset < 0 {
		handler.sendError(c, ErrInvalidOffset)
		return
	}

	info, err := session.GetInfo(c)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	if offset != info.Offset {
		handler.sendError(c, ErrMismatchOffset)
		return
	}

	resp := HTTPResponse{
		StatusCode: http.StatusNoContent,
		Header: HTTPHeader{
			"Cache-Control": "no-store",
			"Upload-Offset": strconv.FormatInt(offset, 10),
		},
	}

	// A session which already holds all bytes only reaches this point if its
	// finalization failed before. The client may retry it with an empty body.
	if !info.IsComplete() {
		resp, info, err = handler.writeChunk(c, resp, session, info)
		if err != nil {
			handler.sendError(c, err)
			return
		}
	}

	resp, err = handler.finalizeIfComplete(c, resp, parent, session, info)
	if err != nil {
		handler.sendError(c, err)
		return
	}

	handler.sendResp(c, resp)
}

// writeChunk reads the body from the request and appends it to the session.
// Afterwards, it will set the necessary response headers but will not send
// the response.
func (handler *UnroutedHandler) writeChunk(c *httpContext, resp HTTPResponse, session Session, info SessionInfo) (HTTPResponse, SessionInfo, error) {
	// Get Content-Length if possible
	r := c.req
	length := r.ContentLength
	offset := info.Offset
	id := info.ID

	// Test if this chunk fits into the session's declared length
	if offset+length > info.Length {
		return resp, info, ErrSizeExceeded
	}

	maxSize := info.Length - offset
	if length > 0 {
		maxSize = length
	}

	c.log.Info("ChunkWriteStart", "id", id, "maxSize", maxSize, "offset", offset)

	var bytesWritten int64
	var err error
	// Prevent a nil pointer dereference when accessing the body which may not be
	// available in the case of a malicious request.
	if r.Body != nil {
		// Limit the data read from the request's body to the allowed maximum
		c.body = newBodyReader(c, maxSize)

		// The channel is closed, so that the goroutine can exit when the
		// write completes normally.
		done := make(chan struct{})
		defer close(done)

		go func() {
			select {
			case <-done:
			case <-handler.serverCtx:
				// serverCtx is closed if the server is being shut down
				c.body.closeWithError(ErrServerShutdown)
			}
		}()

		bytesWritten, err = session.WriteChunk(c, offset, c.body)

		// If we encountered an error while reading the body from the HTTP request, log it, but only include
		// it in the response, if the store did not also return an error.
		if bodyErr := c.body.hasError(); bodyErr != nil {
			c.log.Error("BodyReadError", "id", id, "bytesRead", c.body.bytesRead(), "error", bodyErr.Error())
			if err == nil {
				err = bodyErr
			}
		}
	}

	c.log.Info("ChunkWriteComplete", "id", id, "bytesWritten", bytesWritten)

	if err != nil {
		return resp, info, err
	}

	// Send new offset to client
	info.Offset = offset + bytesWritten
	resp.Header["Upload-Offset"] = strconv.FormatInt(info.Offset, 10)
	handler.Metrics.incBytesReceived(uint64(bytesWritten))

	return resp, info, nil
}

// finalizeIfComplete checks whether a session is complete (i.e. its offset
// matches its declared length) and if so, hands it to the Finalizer and sends
// the necessary message on the CompleteUploads channel. Incomplete sessions
// get their expiration announced instead.
func (handler *UnroutedHandler) finalizeIfComplete(c *httpContext, resp HTTPResponse, parent string, session Session, info SessionInfo) (HTTPResponse, error) {
	if !info.IsComplete() {
		expires, err := session.ExpiresAt(c)
		if err != nil {
			return resp, err
		}

		resp.Header["Upload-Expires"] = formatExpires(expires)
		return resp, nil
	}

	location, err := handler.config.Finalizer.Finalize(c, parent, session)
	if err != nil {
		return resp, err
	}

	url := handler.absURL(c.req, location)
	resp.Header["Location"] = url

	c.log.Info("SessionFinalized", "id", info.ID, "length", info.Length, "url", url)
	handler.Metrics.incSessionsFinalized()

	if handler.config.NotifyCompleteUploads {
		event := newHookEvent(c, info, parent)
		event.Location = url
		handler.CompleteUploads <- event
	}

	return resp, nil
}

// Send the error in the response body. The status code will be taken from
// the Error. Any other error results in 500 Internal Server Error.
func (handler *UnroutedHandler) sendError(c *httpContext, err error) {
	// Errors for read timeouts contain too much information which is not
	// necessary for us and makes grouping for the metrics harder. The error
	// message looks like: read tcp 127.0.0.1:1080->127.0.0.1:53673: i/o timeout
	// Therefore, we use a common error message for all of them.
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		err = ErrReadTimeout
	}

	// Errors for connnection resets also contain TCP details, we don't need, e.g:
	// read tcp 127.0.0.1:1080->127.0.0.1:10023: read: connection reset by peer
	if strings.HasSuffix(err.Error(), "read: connection reset by peer") {
		err = ErrConnectionReset
	}

	var detailedErr Error
	if !errors.As(err, &detailedErr) {
		c.log.Error("InternalServerError", "message", err.Error())
		detailedErr = NewError("ERR_INTERNAL_SERVER_ERROR", err.Error(), http.StatusInternalServerError)
	}

	// If we are sending the response for a HEAD request, ensure that we are not including
	// any response body.
	if c.req.Method == "HEAD" {
		detailedErr.HTTPResponse.Body = ""
	}

	handler.sendResp(c, detailedErr.HTTPResponse)
	handler.Metrics.incErrorsTotal(detailedErr)
}

// sendResp writes the header to w with the specified status code.
func (handler *UnroutedHandler) sendResp(c *httpContext, resp HTTPResponse) {
	resp.writeTo(c.res)

	c.log.Info("ResponseOutgoing", "status", resp.StatusCode, "body", resp.Body)
}

// absURL makes an absolute URL for the given path, relative to the site root.
// If the base path is absolute it will be prepended else the host and protocol
// from the request is used.
func (handler *UnroutedHandler) absURL(r *http.Request, path string) string {
	path = strings.TrimPrefix(path, "/")

	if handler.isBasePathAbs {
		return handler.basePath + path
	}

	// Read origin and protocol from request
	host, proto := getHostAndProtocol(r, handler.config.RespectForwardedHeaders)

	return proto + "://" + host + handler.basePath + path
}

// getHostAndProtocol extracts the host and used protocol (either HTTP or HTTPS)
// from the given request. If `allowForwarded` is set, the X-Forwarded-Host,
// X-Forwarded-Proto and Forwarded headers will also be checked to
// support proxies.
func getHostAndProtocol(r *http.Request, allowForwarded bool) (host, proto string) {
	if r.TLS != nil {
		proto = "https"
	} else {
		proto = "http"
	}

	host = r.Host

	if !allowForwarded {
		return
	}

	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = h
	}

	if h := r.Header.Get("X-Forwarded-Proto"); h == "http" || h == "https" {
		proto = h
	}

	if h := r.Header.Get("Forwarded"); h != "" {
		if r := reForwardedHost.FindStringSubmatch(h); len(r) == 2 {
			host = r[1]
		}

		if r := reForwardedProto.FindStringSubmatch(h); len(r) == 2 {
			proto = r[1]
		}
	}

	return
}

// lockUpload creates a new lock for the given session ID and attempts to lock it.
// The created lock is returned if it was aquired successfully.
func (handler *UnroutedHandler) lockUpload(c *httpContext, id string) (Lock, error) {
	lock, err := handler.composer.Locker.NewLock(id)
	if err != nil {
		return nil, err
	}

	ctx, cancelContext := context.WithTimeout(c, handler.config.AcquireLockTimeout)
	defer cancelContext()

	releaseLock := func() {
		if c.body != nil {
			c.log.Info("UploadInterrupted", "id", id)
			c.body.closeWithError(ErrUploadInterrupted)
		}
	}

	if err := lock.Lock(ctx, releaseLock); err != nil {
		return nil, err
	}

	return lock, nil
}

// ParseMetadataHeader parses the Upload-Metadata header as defined in the
// Creation extension. Keys are lower-cased. Pairs without a value and pairs
// whose value is no valid base64 are ignored.
// e.g. Upload-Metadata: filename bHVucmpzLnBuZw==,content-type aW1hZ2UvcG5n
func ParseMetadataHeader(header string) MetaData {
	meta := make(MetaData)

	for _, element := range strings.Split(header, ",") {
		parts := strings.Fields(element)
		if len(parts) != 2 {
			continue
		}

		dec, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			continue
		}

		meta[strings.ToLower(parts[0])] = string(dec)
	}

	return meta
}

// SerializeMetadataHeader serializes a map of strings into the Upload-Metadata
// header format used in the response for HEAD requests.
// e.g. Upload-Metadata: filename bHVucmpzLnBuZw==,content-type aW1hZ2UvcG5n
func SerializeMetadataHeader(meta MetaData) string {
	header := ""
	for key, value := range meta {
		valueBase64 := base64.StdEncoding.EncodeToString([]byte(value))
		header += key + " " + valueBase64 + ","
	}

	// Remove trailing comma
	if len(header) > 0 {
		header = header[:len(header)-1]
	}

	return header
}

// extractUploadPath splits a request path of the form <parent>/@upload[/<id>]
// into the parent content path and the optional session ID.
func extractUploadPath(path string) (parent string, id string, err error) {
	result := reUploadPath.FindStringSubmatch(path)
	if len(result) != 3 {
		return "", "", ErrNotFound
	}
	return result[1], result[2], nil
}

// joinPath joins non-empty path segments using slashes.
func joinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// formatExpires renders t as an RFC 7231 HTTP-date.
func formatExpires(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// getRequestId returns the value of the X-Request-ID header, if available,
// and also takes care of truncating the input.
func getRequestId(r *http.Request) string {
	reqId := r.Header.Get("X-Request-ID")
	if reqId == "" {
		return ""
	}

	// Limit the length of the request ID to 36 characters, which is enough
	// to fit a UUID.
	if len(reqId) > 36 {
		reqId = reqId[:36]
	}

	return reqId
}
