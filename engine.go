// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package askit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/cache"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/ingest"
	"github.com/poiesic/askit/retrieval"
	"github.com/poiesic/askit/reveal"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
)

// historyLimit caps the conversation history passed to the generation call.
const historyLimit = 20

// Engine ties the corpus store, the retrieval service, the AI provider and
// the reveal controller into one conversational question-answering unit.
type Engine struct {
	backend    *badger.Backend
	repo       storage.KnowledgeRepository
	provider   ai.AIProvider
	caches     *cache.Layer
	retriever  *retrieval.Service
	planner    reveal.StepPlanner
	controller *reveal.Controller
	logger     *slog.Logger

	mu        sync.Mutex
	onFinal   func(*core.Answer)
	genCancel context.CancelFunc
	history   []string
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	listener reveal.Listener
	timings  *reveal.Timings
	planner  reveal.StepPlanner
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. Used by tests to inject mocks.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the corpus store in memory instead of on disk.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithRevealListener sets the listener that receives reveal progress events.
func WithRevealListener(listener reveal.Listener) EngineOption {
	return func(o *engineOptions) {
		o.listener = listener
	}
}

// WithRevealTimings overrides the reveal pacing.
func WithRevealTimings(timings reveal.Timings) EngineOption {
	return func(o *engineOptions) {
		o.timings = &timings
	}
}

// WithStepPlanner replaces the default reasoning-step rule table.
func WithStepPlanner(planner reveal.StepPlanner) EngineOption {
	return func(o *engineOptions) {
		o.planner = planner
	}
}

// NewEngine opens the corpus store at filePath and wires up the engine.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		planner:  reveal.NewPlanner(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create knowledge repository
	repo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	caches := cache.NewLayer()

	// Fallback vectors must match the corpus's fixed embedding dimension,
	// otherwise degraded queries score against truncated vectors.
	embProvider, err := retrieval.NewEmbeddingProvider(provider.Embedder(), caches,
		retrieval.WithFallbackDimensionSource(repo.Dimension))
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	retriever, err := retrieval.NewService(repo, embProvider, caches)
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	e := &Engine{
		backend:   backend,
		repo:      repo,
		provider:  provider,
		caches:    caches,
		retriever: retriever,
		planner:   options.planner,
		logger:    slog.Default(),
	}

	controllerOpts := []reveal.ControllerOption{
		reveal.WithListener(&engineListener{engine: e, next: options.listener}),
	}
	if options.timings != nil {
		controllerOpts = append(controllerOpts, reveal.WithTimings(*options.timings))
	}
	e.controller = reveal.NewController(controllerOpts...)

	return e, nil
}

// Ask retrieves context for the query, starts the reveal sequence and kicks
// off answer generation. The two race; onFinal fires exactly once with the
// committed answer. Submitting a new question preempts any session still in
// flight.
func (e *Engine) Ask(ctx context.Context, query string, opts retrieval.Options, onFinal func(*core.Answer)) error {
	e.mu.Lock()
	history := make([]string, len(e.history))
	copy(history, e.history)
	e.mu.Unlock()

	// Retrieval completes before generation starts: the generation call
	// consumes the ranked context.
	results := e.retriever.Retrieve(ctx, query, opts)

	steps := e.planner.Plan(query)
	if err := e.controller.Start(steps); err != nil {
		return err
	}

	// Bind the generation call to this session: if a new question preempts
	// it, its late result is discarded instead of landing on the next
	// session, and the in-flight call itself is canceled.
	token := e.controller.Token()
	genCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.onFinal = onFinal
	e.history = appendHistory(e.history, "Q: "+query)
	if e.genCancel != nil {
		e.genCancel()
	}
	e.genCancel = cancel
	e.mu.Unlock()

	resolve := func(answer *core.Answer) {
		e.controller.ResolveAnswerFor(token, answer)
	}

	go func() {
		start := time.Now()
		events, err := e.provider.Generator().StreamAnswer(genCtx, &ai.AnswerRequest{
			Query:   query,
			Context: results,
			History: history,
		})
		if err != nil {
			e.logger.Error("error starting answer generation", "err", err)
			resolve(reveal.ApologyAnswer(time.Since(start)))
			return
		}
		reveal.Drive(genCtx, events, resolve)
	}()

	return nil
}

// Search runs retrieval only, without generation or reveal.
func (e *Engine) Search(ctx context.Context, query string, opts retrieval.Options) []*core.ScoredResult {
	return e.retriever.Retrieve(ctx, query, opts)
}

// Cancel preempts any in-flight reveal session and aborts its generation
// call.
func (e *Engine) Cancel() {
	e.controller.Cancel()
	e.mu.Lock()
	if e.genCancel != nil {
		e.genCancel()
		e.genCancel = nil
	}
	e.onFinal = nil
	e.mu.Unlock()
}

// ClearCaches drops all cached embeddings and retrieval results.
func (e *Engine) ClearCaches() {
	e.caches.Clear()
}

// KnowledgeRepository exposes the underlying corpus store.
func (e *Engine) KnowledgeRepository() storage.KnowledgeRepository {
	return e.repo
}

// RevealController exposes the reveal state machine, mainly for inspection.
func (e *Engine) RevealController() *reveal.Controller {
	return e.controller
}

// NewIngestPipeline creates an ingestion pipeline bound to this engine's
// store and embedder.
func (e *Engine) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.repo, e.provider.Embedder(), opts...)
}

func (e *Engine) Close() error {
	e.Cancel()
	e.retriever.Release()

	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	// Close repository
	if err := e.repo.Close(); err != nil {
		e.logger.Error("error closing knowledge repository", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func appendHistory(history []string, line string) []string {
	history = append(history, line)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	return history
}

// engineListener forwards reveal events to the configured listener and
// commits finalized answers to the conversation history.
type engineListener struct {
	engine *Engine
	next   reveal.Listener
}

func (l *engineListener) StepShown(index int, step core.ReasoningStep) {
	if l.next != nil {
		l.next.StepShown(index, step)
	}
}

func (l *engineListener) Waiting() {
	if l.next != nil {
		l.next.Waiting()
	}
}

func (l *engineListener) Finalized(answer *core.Answer) {
	l.engine.mu.Lock()
	l.engine.history = appendHistory(l.engine.history, "A: "+answer.Text)
	onFinal := l.engine.onFinal
	l.engine.onFinal = nil
	l.engine.mu.Unlock()

	if onFinal != nil {
		onFinal(answer)
	}
	if l.next != nil {
		l.next.Finalized(answer)
	}
}
