package cli

import (
	"io"
	"strings"

	"github.com/FHNW/plone.restapi/pkg/handler"
	"github.com/FHNW/plone.restapi/pkg/hooks"
	"github.com/FHNW/plone.restapi/pkg/hooks/file"
	"github.com/FHNW/plone.restapi/pkg/hooks/grpc"
	"github.com/FHNW/plone.restapi/pkg/hooks/http"
	"github.com/FHNW/plone.restapi/pkg/hooks/plugin"
)

// hookHandler is the backend created by createHandler, if any. Backends
// holding a connection or process are closed by closeHookHandler.
var hookHandler hooks.HookHandler

// getHookHandler returns the hook backend selected by the flags or nil if
// hooks are disabled.
func getHookHandler() hooks.HookHandler {
	if Flags.FileHooksDir != "" {
		printStartupLog("Using '%s' for hooks", Flags.FileHooksDir)

		return &file.FileHook{
			Directory: Flags.FileHooksDir,
		}
	} else if Flags.HttpHooksEndpoint != "" {
		printStartupLog("Using '%s' as the endpoint for hooks", Flags.HttpHooksEndpoint)

		return &http.HttpHook{
			Endpoint:       Flags.HttpHooksEndpoint,
			MaxRetries:     Flags.HttpHooksRetry,
			Backoff:        Flags.HttpHooksBackoff,
			Timeout:        Flags.HttpHooksTimeout,
			ForwardHeaders: splitHeaders(Flags.HttpHooksForwardHeaders),
		}
	} else if Flags.GrpcHooksEndpoint != "" {
		printStartupLog("Using '%s' as the endpoint for gRPC hooks", Flags.GrpcHooksEndpoint)

		return &grpc.GrpcHook{
			Endpoint:                        Flags.GrpcHooksEndpoint,
			MaxRetries:                      Flags.GrpcHooksRetry,
			Backoff:                         Flags.GrpcHooksBackoff,
			Timeout:                         Flags.GrpcHooksTimeout,
			ForwardHeaders:                  splitHeaders(Flags.GrpcHooksForwardHeaders),
			Secure:                          Flags.GrpcHooksSecure,
			ServerTLSCertificateFilePath:    Flags.GrpcHooksServerTLSCertFile,
			ClientTLSCertificateFilePath:    Flags.GrpcHooksClientTLSCertFile,
			ClientTLSCertificateKeyFilePath: Flags.GrpcHooksClientTLSKeyFile,
		}
	} else if Flags.PluginHookPath != "" {
		printStartupLog("Using '%s' to load plugin for hooks", Flags.PluginHookPath)

		return &plugin.PluginHook{
			Path: Flags.PluginHookPath,
		}
	}

	return nil
}

func splitHeaders(list string) []string {
	var headers []string
	for _, h := range strings.Split(list, ",") {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// createHandler builds the upload handler and attaches the hook backend,
// if one is configured.
func createHandler(config handler.Config) (*handler.Handler, error) {
	hookHandler = getHookHandler()
	if hookHandler == nil {
		return handler.NewHandler(config)
	}

	var enabledHooksString []string
	for _, h := range Flags.EnabledHooks {
		enabledHooksString = append(enabledHooksString, string(h))
	}
	printStartupLog("Enabled hook events: %s", strings.Join(enabledHooksString, ", "))

	hooks.SetupHookMetrics()

	return hooks.NewHandlerWithHooks(&config, hookHandler, Flags.EnabledHooks)
}

// closeHookHandler releases the backend's connection or plugin process.
func closeHookHandler() error {
	if closer, ok := hookHandler.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
