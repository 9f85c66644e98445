package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tliron/glsp/server"

	"quill/internal/config"
	"quill/internal/lsp"
)

const version = "0.1"

func main() {
	// stdout carries the protocol; everything else goes to stderr.
	cfg, err := config.Load("", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	s := lsp.NewServer(version, logger)
	s.SetLintOptions(cfg.LintOptions())
	handler := s.Handler()
	if err := server.NewServer(&handler, lsp.Name, false).RunStdio(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
