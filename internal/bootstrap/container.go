package bootstrap

import (
	"context"
	"fmt"
	"time"

	"travel-chatbot-be/internal/config"
	"travel-chatbot-be/internal/controller"
	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/memory"
	"travel-chatbot-be/internal/repository/redisstore"
	"travel-chatbot-be/internal/repository/unitofwork"
	"travel-chatbot-be/internal/repository/vectorstore"
	"travel-chatbot-be/internal/service"
	"travel-chatbot-be/pkg/embedding"
	"travel-chatbot-be/pkg/guardrail"
	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/llm/factory"
	pkgNats "travel-chatbot-be/pkg/nats"
	"travel-chatbot-be/pkg/rag/grader"
	"travel-chatbot-be/pkg/rag/graph"
	"travel-chatbot-be/pkg/rag/history"
	"travel-chatbot-be/pkg/rag/intent"
	"travel-chatbot-be/pkg/rag/response"
	"travel-chatbot-be/pkg/rag/search"
	"travel-chatbot-be/pkg/rag/transcript"
	"travel-chatbot-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const historyTTL = 24 * time.Hour

type Container struct {
	Logger *logger.ZapLogger

	// Core
	Graph       *graph.Graph
	VectorStore contract.VectorStore

	// Controllers
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController

	// nil without a database
	TranscriptController controller.ITranscriptController

	// Services
	ChatbotService    service.IChatbotService
	DocumentService   service.IDocumentService
	TranscriptService service.ITranscriptService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	IngestionBridge *service.IngestionBridge

	pubSub     *gochannel.GoChannel
	natsConn   *nats.Conn
	subscriber *pkgNats.Subscriber
	redis      *redis.Client
}

// NewContainer builds every collaborator once. db may be nil when neither the
// pgvector store nor the db transcript sink is configured.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 1. Event Bus
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.connectNats(cfg, sysLogger)

	// 2. Providers
	embeddingProvider, err := newEmbeddingProvider(cfg, sysLogger)
	if err != nil {
		return nil, err
	}
	llmProvider, err := newLLMProvider(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// 3. Stores
	switch cfg.Rag.VectorStore {
	case "memory":
		c.VectorStore = memory.NewDocumentStore()
	case "pgvector":
		if uowFactory == nil {
			return nil, fmt.Errorf("vector store pgvector needs a database connection")
		}
		c.VectorStore = vectorstore.NewPgVectorStore(uowFactory)
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.Rag.VectorStore)
	}
	historyRepo := c.newHistoryRepository(cfg, sysLogger)

	// 4. Graph
	checker, err := guardrail.NewChecker(cfg.Rag.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load guardrail lexicon: %w", err)
	}

	generatorConfig := response.DefaultConfig()
	generatorConfig.ContextCharBudget = cfg.Rag.ContextCharBudget

	c.Graph, err = graph.New(graph.Deps{
		Guardrail: checker,
		Intent:    intent.NewResolver(llmProvider, sysLogger),
		Retriever: search.NewRetriever(c.VectorStore, embeddingProvider, search.Config{
			TopK:          cfg.Rag.TopK,
			CandidatePool: cfg.Rag.CandidatePool,
			MinScore:      cfg.Rag.MinScore,
		}, sysLogger),
		Generator: response.NewGenerator(llmProvider, generatorConfig, sysLogger),
		Grader:    grader.NewGrader(llmProvider, cfg.Rag.ContextCharBudget, sysLogger),
		Logger:    sysLogger,
	}, graph.Config{
		MaxGraderRetries: cfg.Rag.MaxGraderRetries,
		TopK:             cfg.Rag.TopK,
		HistoryLimit:     cfg.Rag.HistoryLimit,
	})
	if err != nil {
		return nil, err
	}

	// 5. Services
	transcripts := c.newTranscriptLogger(cfg, uowFactory, sysLogger)
	historyLoader := history.NewLoader(historyRepo, cfg.Rag.HistoryLimit, sysLogger)
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, c.pubSub)

	c.ChatbotService = service.NewChatbotService(c.Graph, historyLoader, transcripts, sysLogger)
	c.DocumentService = service.NewDocumentService(publisherService, c.VectorStore)
	c.ConsumerService = service.NewConsumerService(
		c.pubSub,
		cfg.Keys.EmbedTopic,
		c.VectorStore,
		embeddingProvider,
		sysLogger,
	)
	c.IngestionBridge = service.NewIngestionBridge(publisherService, sysLogger)
	if uowFactory != nil {
		c.TranscriptService = service.NewTranscriptService(uowFactory)
	}

	// 6. Controllers
	c.ChatbotController = controller.NewChatbotController(c.ChatbotService)
	c.DocumentController = controller.NewDocumentController(c.DocumentService)
	if c.TranscriptService != nil {
		c.TranscriptController = controller.NewTranscriptController(c.TranscriptService)
	}

	return c, nil
}

// Start runs the ingestion consumer and, when NATS is reachable, the event bridge.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	if c.subscriber != nil {
		if err := c.IngestionBridge.Start(ctx, c.subscriber); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Ingestion bridge not started", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (c *Container) Close() {
	if c.subscriber != nil {
		c.subscriber.Close()
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.pubSub != nil {
		_ = c.pubSub.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	_ = c.Logger.Sync()
}

func policy(cfg *config.Config, timeout time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	if cfg.Rag.RetryMaxAttempts > 0 {
		p.MaxAttempts = uint(cfg.Rag.RetryMaxAttempts)
	}
	p.InitialInterval = cfg.Rag.RetryInitialInterval
	p.MaxInterval = cfg.Rag.RetryMaxInterval
	p.PerCallTimeout = timeout
	p.MaxElapsed = timeout * time.Duration(p.MaxAttempts)
	return p
}

func newEmbeddingProvider(cfg *config.Config, log *logger.ZapLogger) (embedding.EmbeddingProvider, error) {
	baseURL, apiKey := cfg.Ai.EmbeddingBaseURL, ""
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		if baseURL == "" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
	case "gemini":
		apiKey = cfg.Keys.GoogleGemini
	case "openai":
		apiKey = cfg.Keys.OpenAI
	}

	inner, err := embedding.NewEmbeddingProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	log.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})
	return embedding.NewRetryingProvider(inner, policy(cfg, cfg.Rag.EmbeddingTimeout), log), nil
}

func newLLMProvider(cfg *config.Config, log *logger.ZapLogger) (llm.LLMProvider, error) {
	baseURL, apiKey := cfg.Ai.LLMBaseURL, ""
	switch cfg.Ai.LLMProvider {
	case "ollama":
		if baseURL == "" {
			baseURL = cfg.Ai.OllamaBaseURL
		}
	case "openai":
		apiKey = cfg.Keys.OpenAI
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	}

	inner, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})
	return llm.NewRetryingProvider(inner, policy(cfg, cfg.Rag.LLMTimeout), log), nil
}

func (c *Container) connectNats(cfg *config.Config, log *logger.ZapLogger) {
	if cfg.App.NatsURL == "" {
		return
	}
	nc, err := pkgNats.Connect(cfg.App.NatsURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "NATS unavailable, bus features disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	c.natsConn = nc

	sub, err := pkgNats.NewSubscriber(nc, log)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to create NATS subscriber", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	c.subscriber = sub
}

func (c *Container) newHistoryRepository(cfg *config.Config, log *logger.ZapLogger) contract.HistoryRepository {
	if cfg.Rag.HistoryStore != "redis" {
		return memory.NewSessionRepository()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, keeping history in memory", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return memory.NewSessionRepository()
	}

	c.redis = rdb
	return redisstore.NewHistoryRepository(rdb, historyTTL)
}

func (c *Container) newTranscriptLogger(cfg *config.Config, uowFactory unitofwork.RepositoryFactory, log *logger.ZapLogger) transcript.Logger {
	multi := transcript.NewMultiLogger(log)
	for _, sink := range cfg.Rag.TranscriptSinks {
		switch sink {
		case "file":
			multi.Add(sink, transcript.NewFileSink(logger.NewIsolatedLogger(cfg.App.TranscriptLogPath)))
		case "db":
			if uowFactory == nil {
				log.Warn("BOOTSTRAP", "Transcript db sink needs a database, skipped", nil)
				continue
			}
			multi.Add(sink, transcript.NewDBSink(uowFactory))
		case "nats":
			if c.natsConn == nil {
				log.Warn("BOOTSTRAP", "Transcript nats sink needs NATS, skipped", nil)
				continue
			}
			pub, err := pkgNats.NewPublisher(c.natsConn, log)
			if err != nil {
				log.Warn("BOOTSTRAP", "Failed to create NATS publisher", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			multi.Add(sink, transcript.NewEventSink(pub))
		default:
			log.Warn("BOOTSTRAP", "Unknown transcript sink", map[string]interface{}{"sink": sink})
		}
	}
	if multi.Len() == 0 {
		log.Info("BOOTSTRAP", "No transcript sinks configured", nil)
	}
	return multi
}
