package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/openzim/warc2zim/internal/config"
	"github.com/openzim/warc2zim/internal/logging"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a converted bundle directory for preview in a browser",
		RunE:  runServe,
	}

	cmd.Flags().String("dir", "./output", "the bundle directory to serve")
	cmd.Flags().String("addr", ":8080", "address to listen on")
	cmd.Flags().String("log-format", "text", "log output format (text or json)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServe(cmd.Flags())
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/*", bundleHandler(cfg.Dir))

	logger.Info("serving bundle", "dir", cfg.Dir, "addr", cfg.Addr)

	server := &http.Server{Addr: cfg.Addr, Handler: r, BaseContext: func(net.Listener) context.Context { return cmd.Context() }}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// bundleHandler resolves a request path onto a file under dir, appending
// "index.html" for directory requests and following ".alias" redirect
// markers left by the entry sink when a file itself is absent.
func bundleHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		requestPath := req.URL.Path
		fullPath := filepath.Join(dir, filepath.FromSlash(requestPath))

		info, err := os.Stat(fullPath)
		if err == nil && info.IsDir() {
			if !strings.HasSuffix(requestPath, "/") {
				http.Redirect(w, req, requestPath+"/", http.StatusMovedPermanently)
				return
			}
			fullPath = filepath.Join(fullPath, "index.html")
		}

		if _, err := os.Stat(fullPath); err != nil {
			if alias, aliasErr := os.ReadFile(fullPath + ".alias"); aliasErr == nil {
				http.Redirect(w, req, "/"+strings.TrimPrefix(string(alias), "/"), http.StatusFound)
				return
			}
			http.NotFound(w, req)
			return
		}

		http.ServeFile(w, req, fullPath)
	}
}
