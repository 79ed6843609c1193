package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"golang.org/x/exp/slog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/FHNW/plone.restapi/pkg/handler"
	"github.com/FHNW/plone.restapi/pkg/sessionstore"
)

// Serve starts the HTTP server and, if -sweep-interval is set, the background
// sweeper. It returns once the server has been shut down after SIGINT or
// SIGTERM.
func Serve() {
	config := handler.Config{
		StoreComposer:           Composer,
		Finalizer:               Finalizer,
		MaxSize:                 Flags.MaxSize,
		BasePath:                Flags.Basepath,
		RespectForwardedHeaders: Flags.BehindProxy,
		Logger:                  slog.Default(),
		AcquireLockTimeout:      Flags.AcquireLockTimeout,
		Cors:                    getCorsConfig(),
	}

	h, err := createHandler(config)
	if err != nil {
		stderr.Fatalf("Unable to create handler: %s", err)
	}
	uploadHandler = h

	printStartupLog("Supported tus extensions: %s\n", h.SupportedExtensions())
	printStartupLog("%s\n", Composer.Capabilities())

	mux := http.NewServeMux()
	if Flags.ExposeMetrics {
		SetupMetrics(mux, h)
	}
	if Flags.ExposePprof {
		SetupPprof(mux)
	}

	prefix := mountPath(Flags.Basepath)
	printStartupLog("Using %s as the base path.\n", Flags.Basepath)
	mux.Handle(prefix+"/", http.StripPrefix(prefix, rootHandler(h)))

	var httpHandler http.Handler = mux
	if Flags.EnableH2C {
		printStartupLog("Enabling HTTP/2 cleartext (h2c) connections.\n")
		httpHandler = h2c.NewHandler(mux, &http2.Server{})
	}

	server := &http.Server{
		Handler: httpHandler,
	}
	server.RegisterOnShutdown(h.InterruptRequestHandling)

	listener, err := createListener()
	if err != nil {
		stderr.Fatalf("Unable to create listener: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, server, listener, Store); err != nil {
		stderr.Fatalf("Unable to serve: %s", err)
	}

	if err := closeHookHandler(); err != nil {
		stderr.Printf("Unable to close hook backend: %s", err)
	}

	if err := Content.Close(); err != nil {
		stderr.Printf("Unable to close content database: %s", err)
	}
}

func createListener() (net.Listener, error) {
	if Flags.HttpSock != "" {
		printStartupLog("Using %s as socket to listen.\n", Flags.HttpSock)
		return NewUnixListener(Flags.HttpSock, Flags.NetworkTimeout, Flags.NetworkTimeout)
	}

	address := Flags.HttpHost + ":" + Flags.HttpPort
	printStartupLog("Using %s as address to listen.\n", address)
	return NewListener(address, Flags.NetworkTimeout, Flags.NetworkTimeout)
}

// run serves on listener until ctx is done and then shuts the server down
// gracefully. The sweeper runs alongside if an interval is configured.
func run(ctx context.Context, server *http.Server, listener net.Listener, store sessionstore.Store) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		stdout.Printf("Shutting down server (timeout: %s)\n", Flags.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), Flags.ShutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			stderr.Printf("Shutdown timeout exceeded, closing remaining connections")
			return server.Close()
		}
		return err
	})

	if Flags.SweepInterval > 0 {
		printStartupLog("Sweeping expired uploads every %s.\n", Flags.SweepInterval)
		g.Go(func() error {
			err := sessionstore.Sweeper{Store: store, Interval: Flags.SweepInterval}.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// mountPath returns the URL path of basePath without trailing slash. The
// site root is the empty string.
func mountPath(basePath string) string {
	if u, err := url.Parse(basePath); err == nil && u.Scheme != "" {
		basePath = u.Path
	}
	if p := strings.Trim(basePath, "/"); p != "" {
		return "/" + p
	}
	return ""
}

// rootHandler shows the greeting for GET requests to the site root and hands
// everything else to the upload handler.
func rootHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Flags.ShowGreeting && r.Method == "GET" && (r.URL.Path == "/" || r.URL.Path == "") {
			DisplayGreeting(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func getCorsConfig() *handler.CorsConfig {
	config := handler.DefaultCorsConfig
	config.Disable = Flags.DisableCors
	config.AllowCredentials = Flags.CorsAllowCredentials
	config.MaxAge = Flags.CorsMaxAge

	var err error
	config.AllowOrigin, err = regexp.Compile(Flags.CorsAllowOrigin)
	if err != nil {
		stderr.Fatalf("Invalid regular expression for -cors-allow-origin flag: %s", err)
	}

	if Flags.CorsAllowHeaders != "" {
		config.AllowHeaders += ", " + Flags.CorsAllowHeaders
	}

	if Flags.CorsAllowMethods != "" {
		config.AllowMethods += ", " + Flags.CorsAllowMethods
	}

	if Flags.CorsExposeHeaders != "" {
		config.ExposeHeaders += ", " + Flags.CorsExposeHeaders
	}

	return &config
}
