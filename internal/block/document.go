package block

import (
	"encoding/json"
	"fmt"
)

// Document is the canonical persisted form: a title and the ordered block
// list.
type Document struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Document returns the store's current persisted form.
func (s *Store) Document() Document {
	return Document{Title: s.title, Blocks: s.Blocks()}
}

// Marshal encodes a document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes and validates a document.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if err := Validate(doc.Blocks); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

// Open builds a store from a persisted document.
func Open(doc Document, opts Options) (*Store, error) {
	return New(doc.Title, doc.Blocks, opts)
}
