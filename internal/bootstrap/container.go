package bootstrap

import (
	"context"
	"log"

	"prospec-live/internal/config"
	"prospec-live/internal/controller"
	"prospec-live/internal/handler"
	"prospec-live/internal/pkg/logger"
	"prospec-live/internal/pkg/mailer"
	"prospec-live/internal/repository/implementation"
	"prospec-live/internal/repository/memory"
	"prospec-live/internal/service"
	"prospec-live/internal/transcript"
	"prospec-live/internal/websocket"

	pktNats "prospec-live/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ProspectionController   controller.IProspectionController
	PorteController         controller.IPorteController
	TranscriptionController controller.ITranscriptionController

	// Background Services (Exposed for main.go to run)
	TranscriptionService service.ITranscriptionService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	// In-process pipeline shared with audio transport instances
	PubSub *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Repositories
	buildingRepo := implementation.NewBuildingRepository(db)
	doorRepo := implementation.NewDoorRepository(db)
	invitationRepo := implementation.NewInvitationRepository(db)
	transcriptionRepo := implementation.NewTranscriptionRepository(db)
	requestCache := memory.NewRequestCache()

	// 4. Services
	prospectionService := service.NewProspectionService(
		buildingRepo,
		doorRepo,
		invitationRepo,
		requestCache,
		wsHub,
		natsPub,
		emailService,
		sysLogger,
	)

	transcriptionService := service.NewTranscriptionService(
		pubSub,
		transcriptionRepo,
		natsPub,
		transcript.Config{
			ParagraphGap:      cfg.Prospect.ParagraphGap,
			ParagraphMaxChars: cfg.Prospect.ParagraphMaxChars,
		},
		sysLogger,
	)

	// 5. Handlers & Controllers
	realtimeHandler := handler.NewRealtimeHandler(wsHub, wsLogger)

	return &Container{
		ProspectionController:   controller.NewProspectionController(prospectionService),
		PorteController:         controller.NewPorteController(prospectionService),
		TranscriptionController: controller.NewTranscriptionController(transcriptionService),

		TranscriptionService: transcriptionService,

		RealtimeHandler: realtimeHandler,
		WebSocketHub:    wsHub,
		PubSub:          pubSub,
	}
}
