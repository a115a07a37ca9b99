package bootstrap

import (
	"log"
	"time"

	"agent-chat-be/internal/config"
	"agent-chat-be/internal/controller"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/pkg/mailer"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/pkg/token"
	"agent-chat-be/internal/repository/unitofwork"
	"agent-chat-be/internal/service"
	"agent-chat-be/pkg/llm/factory"

	pkgNats "agent-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	SessionController controller.ISessionController
	ThreadController  controller.IThreadController
	MessageController controller.IMessageController

	// Shared auth gate, applied per route group.
	AuthMiddleware fiber.Handler

	// Background services, run from main.
	ConsumerService    *service.ConsumerService
	MaintenanceService service.IMaintenanceService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.LogFilePath, cfg.IsProd())

	issuer := token.NewIssuer(cfg.SecretKey, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute)

	emailService := mailer.NewEmailService(
		cfg.SmtpHost,
		cfg.SmtpPort,
		cfg.SmtpUser,
		cfg.SmtpPassword,
		cfg.SmtpFromEmail,
		cfg.SmtpSenderName,
		cfg.FrontendURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	var natsPub *pkgNats.Publisher
	if cfg.NatsURL != "" {
		var err error
		natsPub, err = pkgNats.NewPublisher(cfg.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	llmProvider, err := factory.NewLLMProvider(cfg.LLMProvider, cfg.LLMModel, cfg.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.LLMProvider, cfg.LLMModel)

	// 3. Services
	authService := service.NewAuthService(uowFactory, cfg, issuer, pubSub, natsPub, sysLogger)
	userService := service.NewUserService(uowFactory)
	sessionService := service.NewSessionService(uowFactory)
	threadService := service.NewThreadService(uowFactory)
	messageService := service.NewMessageService(uowFactory, threadService, llmProvider, sysLogger)

	consumerService := service.NewConsumerService(pubSub, emailService, sysLogger)
	maintenanceService := service.NewMaintenanceService(uowFactory, sysLogger)

	authMiddleware := serverutils.NewJwtMiddleware(uowFactory, issuer)

	// 4. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService, userService),
		SessionController: controller.NewSessionController(sessionService),
		ThreadController:  controller.NewThreadController(threadService),
		MessageController: controller.NewMessageController(messageService),

		AuthMiddleware: authMiddleware,

		ConsumerService:    consumerService,
		MaintenanceService: maintenanceService,

		Logger: sysLogger,
	}
}
