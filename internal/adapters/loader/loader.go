// Package loader provides document discovery and loading.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hctpa/guidebot/internal/domain/entities"
	"github.com/hctpa/guidebot/internal/domain/ports"
)

// Extensions the source recognizes.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// DirectorySource implements ports.DocumentSource over a directory
// tree. Text files load as one document each; each PDF page becomes its
// own document.
type DirectorySource struct {
	parser ports.PDFParser
}

// NewDirectorySource creates a source. parser may be nil, in which case
// PDF files are skipped.
func NewDirectorySource(parser ports.PDFParser) *DirectorySource {
	return &DirectorySource{parser: parser}
}

// ListDocuments walks root recursively and loads every supported file.
func (s *DirectorySource) ListDocuments(ctx context.Context, root string) ([]entities.Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &entities.ConfigError{Reason: fmt.Sprintf("document directory %s: %v", root, err)}
	}
	if !info.IsDir() {
		return nil, &entities.ConfigError{Reason: fmt.Sprintf("document path %s is not a directory", root)}
	}

	var docs []entities.Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] {
			return nil
		}

		if ext == ".pdf" {
			if s.parser == nil {
				return nil
			}
			pages, err := s.loadPDF(ctx, path)
			if err != nil {
				return err
			}
			docs = append(docs, pages...)
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		name := filepath.Base(path)
		docs = append(docs, entities.Document{
			ID:      docID(path, 0),
			Source:  name,
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// loadPDF parses one PDF into per-page documents. Blank pages are
// dropped.
func (s *DirectorySource) loadPDF(ctx context.Context, path string) ([]entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)
	pages, err := s.parser.ParsePages(ctx, data, name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	var docs []entities.Document
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		page := i + 1
		docs = append(docs, entities.Document{
			ID:      docID(path, page),
			Source:  fmt.Sprintf("%s#page=%d", name, page),
			Page:    page,
			Content: text,
		})
	}
	return docs, nil
}

// docID creates a deterministic ID for a document.
func docID(path string, page int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", path, page)))
	return hex.EncodeToString(hash[:8])
}
