package lsp

import (
	"sort"
	"sync"
)

// Document is an open editor buffer. Version is the client's counter; it only
// moves forward.
type Document struct {
	URI     string
	Path    string // "" unless the URI is a file:// URI
	Version int32
	Text    string
}

// Store holds every open document, keyed by URI.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewStore() *Store {
	return &Store{docs: map[string]Document{}}
}

// Open records a document, replacing any earlier copy.
func (s *Store) Open(uri string, version int32, text string) Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := Document{URI: uri, Path: DocumentPath(uri), Version: version, Text: text}
	s.docs[uri] = doc
	return doc
}

// Update replaces the text of an open document. Changes for unknown
// documents or older than the stored version are dropped.
func (s *Store) Update(uri string, version int32, text string) (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || version < doc.Version {
		return doc, false
	}
	doc.Version = version
	doc.Text = text
	s.docs[uri] = doc
	return doc, true
}

func (s *Store) Get(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// URIs lists the open documents in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
