package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

func TestOllamaEmbedder_Embed(t *testing.T) {
	var gotReq ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "test-model")
	got, err := e.Embed(context.Background(), "teks uji")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if !reflect.DeepEqual(got, []float32{0.1, 0.2, 0.3}) {
		t.Errorf("embedding %v", got)
	}
	if gotReq.Model != "test-model" || gotReq.Prompt != "teks uji" {
		t.Errorf("request %+v", gotReq)
	}
}

func TestOllamaEmbedder_EmbedBatchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		// Vector encodes input length so order is observable.
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt))}})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "test-model")
	got, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	want := [][]float32{{1}, {2}, {3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "test-model")
	_, err := e.Embed(context.Background(), "teks")
	var svcErr *entities.ServiceError
	if !errors.As(err, &svcErr) {
		t.Errorf("want ServiceError, got %v", err)
	}
}

func TestOllamaEmbedder_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "test-model")
	_, err := e.Embed(context.Background(), "teks")
	var permErr *entities.PermanentError
	if !errors.As(err, &permErr) {
		t.Errorf("want PermanentError, got %v", err)
	}
}

func TestOllamaEmbedder_ConnectionRefused(t *testing.T) {
	e := NewOllamaEmbedder("http://127.0.0.1:1", "test-model")
	_, err := e.Embed(context.Background(), "teks")
	var svcErr *entities.ServiceError
	if !errors.As(err, &svcErr) {
		t.Errorf("want ServiceError, got %v", err)
	}
}

func TestOllamaEmbedder_Defaults(t *testing.T) {
	e := NewOllamaEmbedder("", "")
	if e.baseURL != "http://localhost:11434" {
		t.Errorf("base URL %q", e.baseURL)
	}
	if e.Model() != "nomic-embed-text" {
		t.Errorf("model %q", e.Model())
	}
}

func TestClassifyStatus(t *testing.T) {
	if err := classifyStatus("op", http.StatusOK); err != nil {
		t.Errorf("2xx should be nil, got %v", err)
	}
	var svcErr *entities.ServiceError
	if err := classifyStatus("op", http.StatusTooManyRequests); !errors.As(err, &svcErr) {
		t.Errorf("429 should be ServiceError, got %v", err)
	}
	var permErr *entities.PermanentError
	if err := classifyStatus("op", http.StatusBadRequest); !errors.As(err, &permErr) {
		t.Errorf("400 should be PermanentError, got %v", err)
	}
}
