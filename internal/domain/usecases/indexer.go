package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hctpa/guidebot/internal/domain/entities"
	"github.com/hctpa/guidebot/internal/domain/ports"
)

// IndexFactory builds an immutable vector index from fully-embedded
// chunks. Injected so usecases stay free of adapter imports.
type IndexFactory func(chunks []entities.Chunk) (ports.VectorIndex, error)

// IndexBuilder turns the document directory into a vector index:
// discover documents, normalize, chunk, embed, build. When a snapshot
// store is configured, a compatible snapshot short-circuits the
// embedding step and a fresh build is written back.
type IndexBuilder struct {
	source       ports.DocumentSource
	embedder     ports.Embedder
	snapshot     ports.IndexSnapshot // optional
	newIndex     IndexFactory
	root         string
	chunkSize    int
	chunkOverlap int
	log          *zap.Logger
}

// NewIndexBuilder creates a builder over the given document root.
func NewIndexBuilder(
	source ports.DocumentSource,
	embedder ports.Embedder,
	snapshot ports.IndexSnapshot,
	newIndex IndexFactory,
	root string,
	chunkSize, chunkOverlap int,
	log *zap.Logger,
) *IndexBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndexBuilder{
		source:       source,
		embedder:     embedder,
		snapshot:     snapshot,
		newIndex:     newIndex,
		root:         root,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		log:          log,
	}
}

// Build performs one full build. fresh skips the snapshot read so a
// build forced by a document change re-reads the corpus; the result
// still overwrites the snapshot afterwards.
func (b *IndexBuilder) Build(ctx context.Context, fresh bool) (ports.VectorIndex, error) {
	if b.snapshot != nil && !fresh {
		chunks, err := b.snapshot.Load(ctx, b.embedder.Model())
		if err == nil && len(chunks) > 0 {
			b.log.Info("index restored from snapshot", zap.Int("chunks", len(chunks)))
			return b.newIndex(chunks)
		}
		if err != nil {
			b.log.Debug("snapshot unavailable, building from documents", zap.Error(err))
		}
	}

	docs, err := b.source.ListDocuments(ctx, b.root)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, entities.ErrEmptyCorpus
	}

	var chunks []entities.Chunk
	for _, doc := range docs {
		doc.Content = Normalize(doc.Content)
		cs, err := ChunkDocument(doc, b.chunkSize, b.chunkOverlap)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, cs...)
	}
	if len(chunks) == 0 {
		return nil, entities.ErrEmptyCorpus
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	idx, err := b.newIndex(chunks)
	if err != nil {
		return nil, err
	}

	if b.snapshot != nil {
		if err := b.snapshot.Save(ctx, b.embedder.Model(), chunks); err != nil {
			b.log.Warn("saving index snapshot failed", zap.Error(err))
		}
	}
	b.log.Info("index built",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("dimension", idx.Dimension()))
	return idx, nil
}

type buildState int

const (
	stateIdle buildState = iota
	stateBuilding
	stateReady
	stateFailed
)

func (s buildState) String() string {
	switch s {
	case stateBuilding:
		return "building"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// builderFunc lets tests substitute the build step. fresh demands a
// rebuild from the corpus, bypassing any snapshot.
type builderFunc func(ctx context.Context, fresh bool) (ports.VectorIndex, error)

// IndexManager guards the lazily-initialized, memoized index. At most
// one build is in flight; concurrent callers block on it. A failed
// build is sticky: every later call fails fast with the same error
// until Invalidate. Invalidate drops the index so the next call
// rebuilds wholesale from the corpus.
type IndexManager struct {
	mu      sync.Mutex
	state   buildState
	done    chan struct{}
	index   ports.VectorIndex
	err     error
	stale   bool // next build must bypass the snapshot
	pending bool // invalidated mid-build; discard the result
	build   builderFunc
	log     *zap.Logger
}

// NewIndexManager wraps the builder in a build-state guard.
func NewIndexManager(builder *IndexBuilder, log *zap.Logger) *IndexManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndexManager{build: builder.Build, log: log}
}

// Index returns the built index, triggering or joining a build as
// needed. Cancelled builds reset to idle instead of poisoning the
// manager.
func (m *IndexManager) Index(ctx context.Context) (ports.VectorIndex, error) {
	m.mu.Lock()
	switch m.state {
	case stateReady:
		idx := m.index
		m.mu.Unlock()
		return idx, nil
	case stateFailed:
		err := m.err
		m.mu.Unlock()
		return nil, err
	case stateBuilding:
		done := m.done
		m.mu.Unlock()
		select {
		case <-done:
			return m.Index(ctx)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Idle: this caller runs the build.
	m.state = stateBuilding
	m.done = make(chan struct{})
	done := m.done
	fresh := m.stale
	m.mu.Unlock()

	idx, err := m.build(ctx, fresh)

	m.mu.Lock()
	if m.pending {
		// A document changed while this build ran, so its result is
		// already stale. Discard it and rebuild from the corpus.
		m.pending = false
		m.stale = true
		m.state = stateIdle
		m.index = nil
		m.err = nil
		close(done)
		m.mu.Unlock()
		return m.Index(ctx)
	}
	switch {
	case err == nil:
		m.state = stateReady
		m.index = idx
		m.stale = false
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		m.state = stateIdle
	default:
		m.state = stateFailed
		m.err = err
		m.log.Error("index build failed", zap.Error(err))
	}
	close(done)
	m.mu.Unlock()
	return idx, err
}

// Invalidate drops any built index or sticky failure so the next Index
// call rebuilds from the corpus, bypassing the snapshot. When a build
// is in flight its result is marked stale and discarded on completion,
// triggering an immediate rebuild.
func (m *IndexManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = true
	if m.state == stateBuilding {
		m.pending = true
		return
	}
	m.state = stateIdle
	m.index = nil
	m.err = nil
}

// Stats reports the build state and the chunk count when ready.
func (m *IndexManager) Stats() (state string, chunks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateReady {
		chunks = m.index.Len()
	}
	return m.state.String(), chunks
}
