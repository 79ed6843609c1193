// Package http implements a HTTP-based hook system. For each hook event, it will send a
// POST request to the specified endpoint. The body is a JSON-formatted object including
// the hook type, session and request information. The response body is ignored; any
// non-2XX status code is reported as an error.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethgrid/pester"

	"github.com/FHNW/plone.restapi/pkg/hooks"
)

type HttpHook struct {
	Endpoint       string
	MaxRetries     int
	Backoff        time.Duration
	ForwardHeaders []string
	Timeout        time.Duration

	client *pester.Client
}

func (h *HttpHook) Setup() error {
	// Use linear backoff strategy with the user defined values.
	client := pester.New()
	client.KeepLog = true
	client.MaxRetries = h.MaxRetries
	client.Backoff = func(_ int) time.Duration {
		return h.Backoff
	}

	h.client = client

	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}

	return nil
}

func (h HttpHook) InvokeHook(hookReq hooks.HookRequest) error {
	jsonInfo, err := json.Marshal(hookReq)
	if err != nil {
		return err
	}

	// The request which caused the event has usually been answered already,
	// so its cancellation must not abort the notification.
	ctx := context.Background()
	if hookReq.Event.Context != nil {
		ctx = context.WithoutCancel(hookReq.Event.Context)
	}

	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", h.Endpoint, bytes.NewBuffer(jsonInfo))
	if err != nil {
		return err
	}

	for _, k := range h.ForwardHeaders {
		// Lookup the Canonicalised version of the specified header
		if vals, ok := hookReq.Event.HTTPRequest.Header[http.CanonicalHeaderKey(k)]; ok {
			// but set the case specified by the user
			httpReq.Header[k] = vals
		}
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpRes, err := h.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpRes.Body.Close()

	// Report an error, if the response has a non-2XX status code
	if httpRes.StatusCode < http.StatusOK || httpRes.StatusCode >= http.StatusMultipleChoices {
		httpBody, _ := io.ReadAll(io.LimitReader(httpRes.Body, 1024))
		return fmt.Errorf("unexpected response code from hook endpoint (%d): %s", httpRes.StatusCode, string(httpBody))
	}

	_, _ = io.Copy(io.Discard, httpRes.Body)

	return nil
}
