package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"

	"edu-chat-service/internal/chat"
	"edu-chat-service/internal/handlers"
	"edu-chat-service/internal/middleware"
	"edu-chat-service/internal/observability"
	"edu-chat-service/internal/rabbitmq"
	"edu-chat-service/internal/telemetry"
	"edu-chat-service/internal/ws"
)

const serviceName = "edu-chat-service"

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	shutdownTracing, err := setupTracing(ctx)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Printf("tracing shutdown error: %v", err)
			}
		}()
	}

	engine := chat.NewEngine(chat.Options{
		TypingTTL: time.Duration(getEnvInt("TYPING_TTL_MS", 2000)) * time.Millisecond,
	})

	amqpURL := getEnv("AMQP_URL", "")
	exchange := getEnv("AMQP_EXCHANGE", "edu_chat_events")

	auditPublisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(
		auditPublisher,
		getEnv("AUDIT_ROUTING_KEY", "audit.chat"),
		serviceName,
		getEnv("ENVIRONMENT", "development"),
	)

	if amqpURL != "" {
		eventsPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange)
		if err != nil {
			log.Printf("ws event publishing disabled: %v", err)
		} else {
			observability.SetPublisher(eventsPublisher)
			defer eventsPublisher.Close()
		}
	}

	secret := []byte(getEnv("JWT_SECRET", "dev-secret"))

	hub := ws.NewHub()
	chatHandler := handlers.NewChatHandler(engine, hub, audit)
	groupHandler := handlers.NewGroupHandler(engine, hub, audit)
	groupWS := ws.NewGroupWebSocketHandler(hub, engine, secret)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(secret)
	sendLimiter := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		Burst: getEnvInt("RATE_LIMIT_BURST", 10),
	})

	router.POST("/messages", authMiddleware, sendLimiter, chatHandler.SendMessage)
	router.PATCH("/messages/:message_id", authMiddleware, chatHandler.EditMessage)
	router.DELETE("/messages/:message_id", authMiddleware, chatHandler.DeleteMessage)

	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetGroupMessages)
	router.POST("/groups/:group_id/read", authMiddleware, groupHandler.MarkRead)
	router.GET("/groups/:group_id/unread", authMiddleware, groupHandler.UnreadCount)
	router.POST("/groups/:group_id/typing", authMiddleware, groupHandler.SetTyping)
	router.GET("/groups/:group_id/typing", authMiddleware, groupHandler.TypingUsers)

	router.GET("/ws/groups/:group_id", groupWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	endpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(getEnv("ENVIRONMENT", "development")),
		)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
