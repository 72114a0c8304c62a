package firstapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/firstapp/firstapp/core"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

const shutdownTimeout = 5 * time.Second

// RuntimeConfig is what the CLI hands to Start. Zero values defer to the
// config file; Env "dev" forces debug mode on and "prod" forces it off.
// EnableCache is nil unless the command line set it.
type RuntimeConfig struct {
	Env         string
	EnableCache *bool
	Host        string
	Port        int
	ConfigPath  string
	LogOutput   io.Writer
}

// Server is a built application ready to be served. Close releases what the
// handlers hold open, such as the template watcher.
type Server struct {
	Addr    string
	Handler http.Handler

	closers []io.Closer
}

func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListenAndServe binds before serving so that a busy address is reported
// as an error instead of being retried. Cancelling ctx shuts the server down
// gracefully and returns nil.
var ListenAndServe = func(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

var Exit = os.Exit

func resolveConfig(cfg RuntimeConfig) (*core.Config, error) {
	path := cfg.ConfigPath
	if path == "" {
		path = core.DefaultConfigPath
	}

	config, err := core.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	switch cfg.Env {
	case EnvDev:
		config.Debug = true
	case EnvProd:
		config.Debug = false
	}

	if cfg.EnableCache != nil {
		config.CacheEnabled = *cfg.EnableCache
	}
	if cfg.Host != "" {
		config.Host = cfg.Host
	}
	if cfg.Port != 0 {
		config.Port = cfg.Port
	}

	return config, nil
}

// BuildServer constructs the application: its routes, and in debug mode the
// live reload endpoint, behind the request logger.
func BuildServer(cfg RuntimeConfig) (*Server, error) {
	config, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := core.NewLogger(out, config.Debug || config.DebugLogs)

	mux := http.NewServeMux()
	ctx := core.RuntimeContext{
		Debug:  config.Debug,
		Logger: &logger,
	}

	if config.Debug {
		reloader := core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, reloader.Handler)
		ctx.OnReload = reloader.BroadcastReload
	}

	srv := &Server{Addr: net.JoinHostPort(config.Host, strconv.Itoa(config.Port))}

	router := core.NewRouter(*config, ctx)
	if c, ok := router.(io.Closer); ok {
		srv.closers = append(srv.closers, c)
	}
	mux.Handle("/", router)

	srv.Handler = core.RequestLogger(logger, mux)
	return srv, nil
}

var Start = func(cfg RuntimeConfig) {
	srv, err := BuildServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Config error: %v\n", err)
		Exit(1)
		return
	}

	mode := cfg.Env
	if mode == "" {
		mode = "default"
	}
	fmt.Println("Starting firstapp in", mode, "mode...")
	fmt.Printf("✅ firstapp running at http://%s\n", srv.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = ListenAndServe(ctx, srv.Addr, srv.Handler)
	stop()
	srv.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Server failed: %v\n", err)
		Exit(1)
	}
}
