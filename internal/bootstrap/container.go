package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"discharge-assistant-be/internal/config"
	"discharge-assistant-be/internal/controller"
	"discharge-assistant-be/internal/model"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/repository/contract"
	"discharge-assistant-be/internal/repository/implementation"
	"discharge-assistant-be/internal/repository/memory"
	"discharge-assistant-be/internal/service"
	"discharge-assistant-be/internal/websocket"
	"discharge-assistant-be/pkg/database"
	"discharge-assistant-be/pkg/embedding"
	"discharge-assistant-be/pkg/llm/factory"
	pktNats "discharge-assistant-be/pkg/nats"
	"discharge-assistant-be/pkg/rag"
	"discharge-assistant-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	HealthController controller.IHealthController
	ChatController   controller.IChatController
	AdminController  controller.IAdminController

	// Services (exposed for cmd/ entrypoints)
	ChatService      service.IChatService
	PatientService   service.IPatientService
	IngestionService service.IIngestionService
	Retriever        *rag.Retriever

	// Background workers; InteractionLog is nil without NATS.
	InteractionLog service.IInteractionLogService
	WebSocketHub   *websocket.Hub

	closers []func() error
}

// NewCoreContainer wires what the CLI needs: logger, patients and the
// retriever. NewContainer builds the full HTTP graph on top of it.
func NewCoreContainer(cfg *config.Config) (*Container, error) {
	c := &Container{}
	sysLogger := logger.NewZapLogger(cfg.App.LogFolderPath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, sysLogger.Close)

	chunkRepo, err := c.newChunkRepository(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	embedder, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, cfg.Ai.OllamaBaseURL, cfg.Ai.GoogleGeminiKey)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	sysLogger.Info("BOOT", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	c.Retriever = rag.NewRetriever(chunkRepo, embedder, rag.Config{
		Collection:   cfg.Data.CollectionName,
		SourceName:   sourceName(cfg.Data.SourceDocPath),
		ChunkSize:    cfg.Rag.ChunkSize,
		ChunkOverlap: cfg.Rag.ChunkOverlap,
		TopK:         cfg.Rag.TopK,
	}, sysLogger)

	patientRepo := implementation.NewJSONPatientRepository(cfg.Data.PatientsPath, sysLogger)
	c.PatientService = service.NewPatientService(patientRepo, sysLogger)

	return c, nil
}

func NewContainer(cfg *config.Config) (*Container, error) {
	c, err := NewCoreContainer(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger := c.Logger

	// 1. LLM
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.ClinicalModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMApiKey)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	llmService := service.NewLLMService(llmProvider, cfg.Ai.ReceptionistModel, cfg.Ai.ClinicalModel, sysLogger)
	sysLogger.Info("BOOT", "LLM provider ready", map[string]interface{}{
		"provider":           cfg.Ai.LLMProvider,
		"receptionist_model": cfg.Ai.ReceptionistModel,
		"clinical_model":     cfg.Ai.ClinicalModel,
	})

	// 2. Session store
	var rdb *redis.Client
	var sessions contract.ChatSessionRepository
	switch cfg.Session.Store {
	case "redis":
		opt, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opt)
		c.closers = append(c.closers, rdb.Close)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			sysLogger.Warn("BOOT", "Redis ping failed", map[string]interface{}{"error": err.Error()})
		}
		sessions = implementation.NewRedisSessionRepository(rdb, cfg.Session.TTL)
	default:
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
	}

	// 3. Event bus (optional)
	var publisher service.EventPublisher
	if cfg.Messaging.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Messaging.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOT", "NATS publisher unavailable, audit events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
		}

		natsSub, err := pktNats.NewSubscriber(cfg.Messaging.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOT", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			sink := logger.NewIsolatedLogger(filepath.Join(cfg.App.LogFolderPath, "interactions.log"))
			c.InteractionLog = service.NewInteractionLogService(natsSub, sink)
			c.closers = append(c.closers, func() error { natsSub.Close(); return sink.Close() })
		}
	}
	audit := service.NewAuditService(publisher, sysLogger)

	// 4. Agents
	web := websearch.NewAdapter(websearch.NewDuckDuckGoClient(cfg.Rag.WebSearchURL), cfg.Rag.WebSearchResults, sysLogger)
	clinical := service.NewClinicalService(c.Retriever, web, llmService, audit, cfg.Rag.TopK, sysLogger)
	receptionist := service.NewReceptionistService(c.PatientService, llmService, sysLogger)
	c.ChatService = service.NewChatService(sessions, receptionist, clinical, c.PatientService, audit, sysLogger)

	// 5. Background ingestion
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{Persistent: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, pubSub.Close)
	c.IngestionService = service.NewIngestionService(pubSub, pubSub, c.Retriever, cfg.Data.SourceDocPath, audit, sysLogger)
	adminService := service.NewAdminService(c.IngestionService, c.Retriever, cfg.Data.SourceDocPath)

	// 6. HTTP
	c.WebSocketHub = websocket.NewHub(rdb, sysLogger)
	c.HealthController = controller.NewHealthController(cfg.App.Name, cfg.App.Version)
	c.ChatController = controller.NewChatController(c.ChatService, c.WebSocketHub)
	c.AdminController = controller.NewAdminController(adminService, cfg.Security.JWTSecret)

	return c, nil
}

func (c *Container) newChunkRepository(cfg *config.Config) (contract.DocumentChunkRepository, error) {
	switch cfg.Data.VectorStore {
	case "pgvector":
		db, err := database.NewGormDBFromDSN(cfg.Data.DBConnection, &model.VectorCollection{}, &model.DocumentChunk{})
		if err != nil {
			return nil, fmt.Errorf("open pgvector store: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, sqlDB.Close)
		return implementation.NewDocumentChunkRepository(db), nil
	case "sqlite", "":
		db, err := database.OpenSQLite(cfg.Data.VectorDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		c.closers = append(c.closers, db.Close)
		return implementation.NewSQLiteDocumentChunkRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE %q", cfg.Data.VectorStore)
	}
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func sourceName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
