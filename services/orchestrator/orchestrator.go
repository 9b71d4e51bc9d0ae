// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package orchestrator wires the document classification pipeline, the
// employee store, and the question-answering service into one HTTP server.
//
// The package exposes a small Service interface so the entry point in
// cmd/orchestrator stays trivial and integration tests can drive the router
// directly without binding a port.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riteshbawaskar/doc-classify/services/extraction"
	"github.com/riteshbawaskar/doc-classify/services/llm"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/datatypes"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/observability"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/routes"
	"github.com/riteshbawaskar/doc-classify/services/orchestrator/services"
	"github.com/riteshbawaskar/doc-classify/services/pipeline"
	"github.com/riteshbawaskar/doc-classify/services/policy_engine"
	"github.com/riteshbawaskar/doc-classify/services/store"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Service abstracts the orchestrator lifecycle. Run() blocks and should only
// be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers must
	// not modify the routes after construction.
	Router() *gin.Engine
}

// Config holds orchestrator configuration. All fields are optional; zero
// values get defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 8600
	Port int

	// LLMBackend specifies the LLM provider.
	// Valid values: "gemini", "openai", "ollama". Default: "gemini"
	LLMBackend string

	// EmbeddingBackend specifies the embedding provider.
	// Valid values: "gemini", "openai". Default: follows LLMBackend,
	// falling back to "gemini" for backends without an embedding API.
	EmbeddingBackend string

	// WeaviateURL is the Weaviate vector database URL.
	// If empty, indexing and question answering are disabled.
	WeaviateURL string

	// DBPath is the SQLite file for extracted employee records.
	// Default: "./data/employees.db"
	DBPath string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "otel-collector:4317"
	OTelEndpoint string

	// OCREnabled wires the Tesseract engine into the extractor so image
	// uploads are processed. Requires the tesseract libraries at runtime.
	OCREnabled bool

	// APIKey protects the /v1 route group with a static bearer token.
	// If empty, authentication is disabled.
	APIKey string

	// DisableMetrics skips Prometheus metric registration. Metrics are
	// on by default.
	DisableMetrics bool
}

type service struct {
	config         Config
	router         *gin.Engine
	llmClient      llm.LLMClient
	embedder       llm.Embedder
	policyEngine   *policy_engine.PolicyEngine
	weaviateClient *weaviate.Client
	store          *store.Store
	classifier     *pipeline.Classifier
	qaService      *services.QAService
	tracerCleanup  func(context.Context)
}

// New creates a ready-to-run orchestrator Service.
//
// Initialization order: tracing, metrics, Weaviate (optional), policy
// engine, LLM client, embedder, employee store, pipeline, QA service,
// router. A missing or unreachable Weaviate is not fatal; the service then
// runs in lightweight mode with classification and employee CRUD only.
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if !s.config.DisableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	if err := s.initWeaviate(); err != nil {
		slog.Warn("Weaviate initialization failed, running in lightweight mode",
			"error", err)
		// Not fatal - continue without indexing and QA.
	}

	s.policyEngine, err = policy_engine.NewPolicyEngine()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	if err := s.initEmbedder(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	s.store, err = store.NewStore(s.config.DBPath)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to open employee store: %w", err)
	}

	extractor := extraction.NewExtractor()
	if s.config.OCREnabled {
		extractor = extraction.NewExtractorWithOCR(extraction.NewTesseractEngine())
		slog.Info("OCR enabled, image uploads will be processed with Tesseract")
	}
	s.classifier = pipeline.NewClassifier(s.llmClient, extractor, s.store)

	if s.weaviateClient != nil {
		retriever := services.NewWeaviateRetriever(s.weaviateClient, s.embedder)
		s.qaService = services.NewQAService(retriever, s.llmClient, s.policyEngine)
	}

	s.initRouter()

	return s, nil
}

// Run starts the HTTP server and blocks until shutdown or error. Cleanup is
// automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting orchestrator server", "port", s.config.Port)

	return s.router.Run(addr)
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8600
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "gemini"
	}
	if cfg.EmbeddingBackend == "" {
		switch cfg.LLMBackend {
		case "openai":
			cfg.EmbeddingBackend = "openai"
		default:
			cfg.EmbeddingBackend = "gemini"
		}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/employees.db"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "otel-collector:4317"
	}

	return cfg
}

// initTracer sets up the OTLP trace exporter. Uses an insecure gRPC
// connection, appropriate for internal networks only.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("docclassify-orchestrator")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initWeaviate creates a Weaviate client if WeaviateURL is configured and
// ensures the schema exists. An empty URL is not an error.
func (s *service) initWeaviate() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not configured, running in lightweight mode")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	s.weaviateClient, err = weaviate.NewClient(clientConf)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	datatypes.EnsureWeaviateSchema(s.weaviateClient)
	slog.Info("Weaviate client initialized", "url", weaviateURL)

	return nil
}

func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "gemini":
		s.llmClient, err = llm.NewGeminiClient()
		slog.Info("Using Gemini LLM backend")
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to gemini", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewGeminiClient()
	}

	return err
}

func (s *service) initEmbedder() error {
	var err error

	switch s.config.EmbeddingBackend {
	case "openai":
		s.embedder, err = llm.NewOpenAIEmbedder()
		slog.Info("Using OpenAI embedding backend")
	default:
		s.embedder, err = llm.NewGeminiEmbedder(llm.TaskTypeRetrievalDocument)
		slog.Info("Using Gemini embedding backend")
	}

	return err
}

func (s *service) initRouter() {
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("docclassify-orchestrator"))

	routes.SetupRoutes(s.router, routes.Deps{
		WeaviateClient: s.weaviateClient,
		Embedder:       s.embedder,
		Classifier:     s.classifier,
		Store:          s.store,
		QAService:      s.qaService,
		APIKey:         s.config.APIKey,
	})
}

// cleanup releases resources held by the service. Called when Run() exits
// or on initialization failure.
func (s *service) cleanup() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("employee store close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

var _ Service = (*service)(nil)
