// Package plugin provides a hook system based on Hashicorp's plugin system. You can
// write a plugin in many languages. The plugin is then executed as a separate process
// and receives the hook events over RPC. More details can be found at
// https://github.com/hashicorp/go-plugin. A Go-based plugin only has to call Serve
// with its HookHandler, see examples/hooks/plugin.
package plugin

import (
	"fmt"
	"net/rpc"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/FHNW/plone.restapi/pkg/hooks"
)

type PluginHook struct {
	Path string
	// Logger receives the plugin's log output. A logger writing to stderr is
	// used if it is nil.
	Logger hclog.Logger

	client      *plugin.Client
	handlerImpl hooks.HookHandler
}

func (h *PluginHook) Setup() error {
	logger := h.Logger
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{
			Name:   "hook-plugin",
			Output: os.Stderr,
			Level:  hclog.Info,
		})
	}

	// We're a host! Start by launching the plugin process.
	h.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         pluginMap,
		Cmd:             exec.Command(h.Path),
		SyncStdout:      os.Stdout,
		SyncStderr:      os.Stderr,
		Logger:          logger,
	})

	// Connect via RPC
	rpcClient, err := h.client.Client()
	if err != nil {
		h.client.Kill()
		return fmt.Errorf("unable to start hook plugin %s: %w", h.Path, err)
	}

	raw, err := rpcClient.Dispense("hookHandler")
	if err != nil {
		h.client.Kill()
		return fmt.Errorf("unable to dispense hook plugin %s: %w", h.Path, err)
	}

	// This feels like a normal interface implementation but is in fact
	// over an RPC connection.
	h.handlerImpl = raw.(hooks.HookHandler)

	return h.handlerImpl.Setup()
}

func (h *PluginHook) InvokeHook(req hooks.HookRequest) error {
	return h.handlerImpl.InvokeHook(req)
}

// Close stops the plugin process.
func (h *PluginHook) Close() error {
	if h.client != nil {
		h.client.Kill()
	}
	return nil
}

// HandshakeConfig is used to do a basic handshake between a plugin and host.
// If the handshake fails, a user friendly error is shown. This prevents users
// from executing bad plugins or executing a plugin directory. It is a UX
// feature, not a security feature.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TUSUPLOAD_PLUGIN",
	MagicCookieValue: "yes",
}

// pluginMap is the map of plugins we can dispense.
var pluginMap = map[string]plugin.Plugin{
	"hookHandler": &HookHandlerPlugin{},
}

// Serve runs impl as a hook plugin. It must be called from the plugin
// process's main function and blocks until the host disconnects.
func Serve(impl hooks.HookHandler) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"hookHandler": &HookHandlerPlugin{Impl: impl},
		},
	})
}

// HookHandlerRPC is the host side of the RPC connection.
type HookHandlerRPC struct{ client *rpc.Client }

func (g *HookHandlerRPC) Setup() error {
	var res interface{}
	return g.client.Call("Plugin.Setup", new(interface{}), &res)
}

func (g *HookHandlerRPC) InvokeHook(req hooks.HookRequest) error {
	// The request context only lives in this process.
	req.Event.Context = nil

	var ok bool
	return g.client.Call("Plugin.InvokeHook", req, &ok)
}

// HookHandlerRPCServer is the RPC server that HookHandlerRPC talks to,
// conforming to the requirements of net/rpc.
type HookHandlerRPCServer struct {
	// This is the real implementation
	Impl hooks.HookHandler
}

func (s *HookHandlerRPCServer) Setup(args interface{}, resp *interface{}) error {
	return s.Impl.Setup()
}

func (s *HookHandlerRPCServer) InvokeHook(args hooks.HookRequest, resp *bool) error {
	if err := s.Impl.InvokeHook(args); err != nil {
		return err
	}
	*resp = true
	return nil
}

// HookHandlerPlugin is the implementation of plugin.Plugin so we can
// serve/consume this. Server returns the RPC server running inside the
// plugin process and Client the HookHandler used by the host.
type HookHandlerPlugin struct {
	// Impl Injection
	Impl hooks.HookHandler
}

func (p *HookHandlerPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &HookHandlerRPCServer{Impl: p.Impl}, nil
}

func (HookHandlerPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &HookHandlerRPC{client: c}, nil
}
