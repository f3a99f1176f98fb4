package bootstrap

import (
	"context"
	"log"
	"time"

	"clinical-docs-be/internal/config"
	"clinical-docs-be/internal/controller"
	"clinical-docs-be/internal/handler"
	"clinical-docs-be/internal/pkg/logger"
	"clinical-docs-be/internal/pkg/mailer"
	"clinical-docs-be/internal/repository/implementation"
	"clinical-docs-be/internal/repository/memory"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/internal/service"
	"clinical-docs-be/internal/websocket"
	"clinical-docs-be/pkg/aiservice"
	"clinical-docs-be/pkg/embedding"
	"clinical-docs-be/pkg/embedding/jina"
	"clinical-docs-be/pkg/llm/factory"

	pkgNats "clinical-docs-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	PatientController  controller.IPatientController
	SessionController  controller.ISessionController
	DocumentController controller.IDocumentController
	SoapNoteController controller.ISoapNoteController
	ChatbotController  controller.IChatbotController
	WorkflowController controller.IWorkflowController

	// Background services, run by main.
	ConsumerService service.IConsumerService

	// WebSockets & notifications
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// In-process bus for embedding jobs
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider per config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaApiKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Clinical AI microservice client (extraction, PII, SOAP generation)
	aiClient := aiservice.NewClient(
		cfg.AiService.BaseURL,
		time.Duration(cfg.AiService.TimeoutSeconds)*time.Second,
	)

	// NATS event bus
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis, used by the WebSocket hub for cross-instance delivery
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	publisherService := service.NewPublisherService(cfg.AiService.EmbedTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.AiService.EmbedTopicName,
		uowFactory,
		embeddingProvider,
		natsPub,
		sysLogger,
	)

	// Domain services
	authService := service.NewAuthService(uowFactory)
	patientService := service.NewPatientService(uowFactory)
	sessionService := service.NewSessionService(uowFactory, natsPub, sysLogger)
	documentService := service.NewDocumentService(uowFactory, aiClient, natsPub, sysLogger, cfg.App.UploadDir)
	soapNoteService := service.NewSoapNoteService(uowFactory, publisherService, natsPub, emailService, sysLogger)
	chatbotService := service.NewChatbotService(uowFactory, llmProvider, embeddingProvider, sysLogger)

	workflowStore := memory.NewWorkflowStore()
	workflowService := service.NewWorkflowService(workflowStore, sessionService, documentService, soapNoteService)

	// Notifications
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		AuthController:     controller.NewAuthController(authService),
		PatientController:  controller.NewPatientController(patientService),
		SessionController:  controller.NewSessionController(sessionService),
		DocumentController: controller.NewDocumentController(documentService, cfg.App.MaxUploadSizeMB),
		SoapNoteController: controller.NewSoapNoteController(soapNoteService),
		ChatbotController:  controller.NewChatbotController(chatbotService),
		WorkflowController: controller.NewWorkflowController(workflowService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
