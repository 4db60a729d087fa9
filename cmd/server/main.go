package main

import (
	"context"
	"log"
	"os"

	"github.com/sam-nazarian/event-booking-practice/config"
	"github.com/sam-nazarian/event-booking-practice/internal/cache"
	"github.com/sam-nazarian/event-booking-practice/internal/database"
	"github.com/sam-nazarian/event-booking-practice/internal/handler"
	"github.com/sam-nazarian/event-booking-practice/internal/media"
	"github.com/sam-nazarian/event-booking-practice/internal/queue"
	"github.com/sam-nazarian/event-booking-practice/internal/repository"
	"github.com/sam-nazarian/event-booking-practice/internal/service"
	"github.com/sam-nazarian/event-booking-practice/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	client, db, err := database.InitMongo(&cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to initialize mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	if err := os.MkdirAll(cfg.Media.Root, 0o755); err != nil {
		log.Fatalf("Failed to create media root: %v", err)
	}

	// repositories
	eventRepo := repository.NewEventRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	userRepo := repository.NewUserRepository(db)

	eventCache := cache.NewRedisEventCacheManager(rdb, cache.DefaultEventTTL)

	// 評分重算隊列：預設單機 channel，多實例部署時切 redis stream
	var ratingQueue queue.RatingQueue
	if cfg.Queue.Backend == "redis" {
		ratingQueue, err = queue.NewRedisStreamRatingQueue(rdb, "", nil)
		if err != nil {
			log.Fatalf("Failed to initialize rating queue: %v", err)
		}
	} else {
		ratingQueue = queue.NewRatingQueue(cfg.Queue.BufferSize)
	}

	aggregator := service.NewRatingAggregator(reviewRepo, eventRepo, eventCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ratingWorker := worker.NewRatingWorker(aggregator, ratingQueue)
	if err := ratingWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start rating worker: %v", err)
	}

	// services
	eventService := service.NewEventService(eventRepo, reviewRepo, userRepo, eventCache)
	reviewService := service.NewReviewService(reviewRepo, ratingQueue)
	participantService := service.NewParticipantService(participantRepo)

	codec := media.NewImageCodec(cfg.Media.Root)
	uploads := media.NewUploadPipeline(codec)

	router := gin.Default()
	router.Static("/img/events", cfg.Media.Root)

	handler.NewEventHandler(eventService, uploads).RegisterRoutes(router)
	handler.NewReviewHandler(reviewService).RegisterRoutes(router)
	handler.NewParticipantHandler(participantService).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
