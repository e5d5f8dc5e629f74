package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/feastly/delivery-api/configs"
	"github.com/feastly/delivery-api/internal/adapter/cache"
	"github.com/feastly/delivery-api/internal/adapter/http"
	"github.com/feastly/delivery-api/internal/adapter/http/middleware"
	"github.com/feastly/delivery-api/internal/adapter/kafka"
	"github.com/feastly/delivery-api/internal/adapter/queue"
	"github.com/feastly/delivery-api/internal/adapter/repo"
	domain "github.com/feastly/delivery-api/internal/entity"
	"github.com/feastly/delivery-api/internal/logging"
	"github.com/feastly/delivery-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.Base()

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	log.Info("delivery-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	menuRepo := repo.NewMySQLMenuRepo(db)
	restaurantRepo := repo.NewMySQLRestaurantRepo(db)
	customerRepo := repo.NewMySQLCustomerRepo(db)
	partnerRepo := repo.NewMySQLDeliveryPartnerRepo(db)
	reviewRepo := repo.NewMySQLReviewRepo(db)

	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)
	otpStore := cache.NewRedisOTPStore(rdb, cfg.OTP.TTL)

	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// usecases
	rates := domain.PricingRates{TaxRate: cfg.TaxRate(), PerKmRate: cfg.PerKmRate()}
	createUC := usecase.NewCreateOrder(orderRepo, menuRepo, restaurantRepo, customerRepo, idem, producer, rates)
	statusUC := usecase.NewUpdateOrderStatus(orderRepo, restaurantRepo, customerRepo, partnerRepo, statusCache, producer)

	// register queue-handler
	setupQueue(ch, statusCache)

	// register kafka-listener
	setupKafkaListener(cfg, statusUC)

	// init handlers + router + middleware
	handlers := http.Handlers{
		Orders:      http.NewOrderHandler(createUC, statusUC, orderRepo, statusCache),
		Menu:        http.NewMenuHandler(menuRepo),
		Restaurants: http.NewRestaurantHandler(restaurantRepo),
		Reviews:     http.NewReviewHandler(reviewRepo, orderRepo),
		Auth:        http.NewAuthHandler(cfg, customerRepo, restaurantRepo, otpStore),
		Token:       http.NewTokenHandler(cfg),
	}
	authz := middleware.NewAuthz(cfg)
	router := http.NewRouter(handlers, authz)

	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, statusCache usecase.OrderCache) {
	h := queue.NewOrderEventHandler(statusCache)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.TrackerQueue(), queue.JSONHandler[usecase.OrderEvent]{HandleFunc: h.HandleEvent})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, statusUC *usecase.UpdateOrderStatus) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewDeliveryStatusHandler(statusUC)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.DeliveryTopic}, h.Handle, logging.New("kafka"))

	go func() {
		if err := consumer.Start(context.Background()); err != nil {
			panic(err)
		}
	}()
}
