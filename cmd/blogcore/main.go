package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feather/blogcore"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		path := blogcore.EnvOr("BLOG_CONFIG", "")
		if len(os.Args) > 2 {
			path = os.Args[2]
		}
		if err := runServe(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("blogcore %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := blogcore.LoadConfig(configPath)
	if err != nil {
		return err
	}
	app := blogcore.New(cfg, blogcore.ViewFuncs{})
	defer app.Close()

	if err := app.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- app.Echo.Start(cfg.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.Echo.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`blogcore - the request core of a blog built with Go, Echo, and templ

Usage:
  blogcore <command> [arguments]

Commands:
  serve [config.yaml]   Serve the blog (config path also read from BLOG_CONFIG)
  version               Print the blogcore version
  help                  Show this help message

Examples:
  blogcore serve
  BLOG_SESSION_SECRET=change-me blogcore serve blog.yaml`)
}
