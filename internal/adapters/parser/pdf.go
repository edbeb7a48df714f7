// Package parser provides document parsing adapters.
// PDF extraction is delegated to a sidecar service.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// SidecarPDFParser implements ports.PDFParser by calling an extraction
// sidecar over HTTP. The sidecar returns one text per page so each page
// becomes its own document.
type SidecarPDFParser struct {
	serviceURL string
	client     *http.Client
}

// NewSidecarPDFParser creates a parser. serviceURL defaults to the
// local sidecar.
func NewSidecarPDFParser(serviceURL string) *SidecarPDFParser {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &SidecarPDFParser{
		serviceURL: serviceURL,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type parseResponse struct {
	Pages []string `json:"pages"`
	Error string   `json:"error,omitempty"`
}

// ParsePages extracts per-page text from PDF bytes.
func (p *SidecarPDFParser) ParsePages(ctx context.Context, data []byte, filename string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serviceURL+"/parse", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &entities.ServiceError{Op: "pdf parse", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 {
			return nil, &entities.ServiceError{Op: "pdf parse", Err: fmt.Errorf("status %d", resp.StatusCode)}
		}
		return nil, &entities.PermanentError{Op: "pdf parse", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var result parseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return nil, &entities.PermanentError{Op: "pdf parse", Err: fmt.Errorf("%s: %s", filename, result.Error)}
	}
	return result.Pages, nil
}

// IsServiceHealthy reports whether the sidecar answers its health check.
func (p *SidecarPDFParser) IsServiceHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serviceURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
