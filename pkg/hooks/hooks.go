// Package hooks notifies external systems about upload sessions using the
// handler's notification channels. The actual hook systems are implemented in
// the subpackages and this package provides the glue between the handler and
// the hook system. For example, to use the HTTP-based hook system:
//
//	import (
//		"github.com/FHNW/plone.restapi/pkg/handler"
//		"github.com/FHNW/plone.restapi/pkg/hooks"
//		"github.com/FHNW/plone.restapi/pkg/hooks/http"
//	)
//	config := handler.Config{}
//	hookHandler := &http.HttpHook{
//		Endpoint: "https://example.com"
//	}
//	handler, err = hooks.NewHandlerWithHooks(&config, hookHandler, hooks.AvailableHooks)
//
// Hooks are notifications only. They run after the response has been decided
// and cannot change it.
package hooks

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

// HookHandler is the main interface to be implemented by all hook backends.
type HookHandler interface {
	// Setup is invoked once the hook backend is initialized.
	Setup() error
	// InvokeHook is invoked for every hook that is executed. req contains the
	// hook type, the involved session and the causing HTTP request.
	InvokeHook(req HookRequest) error
}

// HookRequest contains the information about the hook type, the involved
// session and the causing HTTP request.
type HookRequest struct {
	// Type is the name of the hook.
	Type HookType
	// Event contains the involved session and causing HTTP request.
	Event handler.HookEvent
}

type HookType string

const (
	// HookPostCreate is emitted after a session has been created.
	HookPostCreate HookType = "post-create"
	// HookPostFinish is emitted after a session has been turned into a
	// content object. Event.Location holds the object's URL.
	HookPostFinish HookType = "post-finish"
)

// AvailableHooks is a slice of all hooks that are implemented.
var AvailableHooks []HookType = []HookType{HookPostCreate, HookPostFinish}

var MetricsHookErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tus_hook_errors_total",
		Help: "Total number of execution errors per hook type.",
	},
	[]string{"hooktype"},
)

var MetricsHookInvocationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tus_hook_invocations_total",
		Help: "Total number of invocations per hook type.",
	},
	[]string{"hooktype"},
)

// SetupHookMetrics initializes the hook counters, so that they are exported
// before the first invocation.
func SetupHookMetrics() {
	for _, typ := range AvailableHooks {
		MetricsHookErrorsTotal.WithLabelValues(string(typ)).Add(0)
		MetricsHookInvocationsTotal.WithLabelValues(string(typ)).Add(0)
	}
}

// invokeHook executes a hook of the given type with the given event data.
// Errors are logged and counted, but not returned, since nobody waits for
// the outcome of a notification.
func invokeHook(logger *slog.Logger, typ HookType, event handler.HookEvent, hookHandler HookHandler) {
	MetricsHookInvocationsTotal.WithLabelValues(string(typ)).Add(1)

	id := event.Upload.ID

	logger.Debug("HookInvocationStart", "type", typ, "id", id)

	err := hookHandler.InvokeHook(HookRequest{
		Type:  typ,
		Event: event,
	})
	if err != nil {
		logger.Error("HookInvocationError", "type", typ, "id", id, "error", err.Error())
		MetricsHookErrorsTotal.WithLabelValues(string(typ)).Add(1)
		return
	}

	logger.Debug("HookInvocationFinish", "type", typ, "id", id)
}

// NewHandlerWithHooks creates a request handler whose notification channels
// are configured to emit the hooks on the provided hook handler. It overwrites
// the `config.Notify*` fields depending on the enabled hooks. Non-enabled
// hooks will not be emitted.
//
// Note: NewHandlerWithHooks sets up a goroutine to consume the notification
// channels (CreatedUploads, CompleteUploads) of the created handler. These
// channels must not be consumed by the caller.
func NewHandlerWithHooks(config *handler.Config, hookHandler HookHandler, enabledHooks []HookType) (*handler.Handler, error) {
	if err := hookHandler.Setup(); err != nil {
		return nil, fmt.Errorf("unable to setup hooks for handler: %s", err)
	}

	config.NotifyCreatedUploads = slices.Contains(enabledHooks, HookPostCreate)
	config.NotifyCompleteUploads = slices.Contains(enabledHooks, HookPostFinish)

	handler, err := handler.NewHandler(*config)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		for {
			select {
			case event := <-handler.CreatedUploads:
				go invokeHook(logger, HookPostCreate, event, hookHandler)
			case event := <-handler.CompleteUploads:
				go invokeHook(logger, HookPostFinish, event, hookHandler)
			}
		}
	}()

	return handler, nil
}
