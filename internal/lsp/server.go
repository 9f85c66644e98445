package lsp

import (
	"log/slog"

	"quill/internal/lint"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const Name = "quill-lsp"

// Server answers document sync and symbol requests. Every change republishes
// the full diagnostic set for the document.
type Server struct {
	store   *Store
	lint    lint.Options
	log     *slog.Logger
	version string
}

func NewServer(version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:   NewStore(),
		lint:    lint.DefaultOptions(),
		log:     log,
		version: version,
	}
}

func (s *Server) Store() *Store { return s.store }

// SetLintOptions selects the warning checks for later publishes.
func (s *Server) SetLintOptions(opts lint.Options) { s.lint = opts }

func (s *Server) Handler() protocol.Handler {
	return protocol.Handler{
		Initialize:                 s.initialize,
		Initialized:                s.initialized,
		Shutdown:                   s.shutdown,
		SetTrace:                   s.setTrace,
		TextDocumentDidOpen:        s.didOpen,
		TextDocumentDidChange:      s.didChange,
		TextDocumentDidSave:        s.didSave,
		TextDocumentDidClose:       s.didClose,
		TextDocumentDocumentSymbol: s.documentSymbol,
	}
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	full := protocol.TextDocumentSyncKindFull
	caps := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &full,
			Save:      protocol.SaveOptions{IncludeText: &protocol.False},
		},
		DocumentSymbolProvider: true,
	}
	s.log.Info("initialize", "server", Name, "version", s.version)
	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: ptrString(s.version),
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := s.store.Open(string(params.TextDocument.URI), params.TextDocument.Version, params.TextDocument.Text)
	return s.publish(ctx, doc)
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}
	doc, ok := s.store.Update(uri, params.TextDocument.Version, text)
	if !ok {
		s.log.Debug("dropped stale change", "uri", uri, "version", params.TextDocument.Version)
		return nil
	}
	return s.publish(ctx, doc)
}

func (s *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if doc, ok := s.store.Get(string(params.TextDocument.URI)); ok {
		return s.publish(ctx, doc)
	}
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Close(uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, ok := s.store.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return Symbols(doc.Text), nil
}

func (s *Server) publish(ctx *glsp.Context, doc Document) error {
	diags := []protocol.Diagnostic{}
	if IsSourceURI(doc.URI) {
		diags = ToLspDiagnostics(doc.Text, lint.CheckSource(doc.Text, s.lint))
	}
	s.log.Debug("publish diagnostics", "uri", doc.URI, "path", doc.Path, "version", doc.Version, "count", len(diags))
	version := protocol.UInteger(max(doc.Version, 0))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(doc.URI),
		Version:     &version,
		Diagnostics: diags,
	})
	return nil
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}
