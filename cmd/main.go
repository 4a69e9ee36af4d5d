package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	// Instrumentation
	"github.com/exaring/otelpgx"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/jupiterclapton/skylark/config"
	"github.com/jupiterclapton/skylark/internal/adapters/primary/httpapi"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/cache"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/graph"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/identity"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/mediastore"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/skylark/internal/adapters/secondary/security"
	"github.com/jupiterclapton/skylark/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	slog.Info("🚀 Starting Skylark", "env", cfg.Env, "port", cfg.HTTPPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Base de données (Postgres)
	dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		slog.Error("Unable to parse DB config", "error", err)
		os.Exit(1)
	}
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	slog.Info("✅ Connected to Postgres")

	// 4. Infrastructure: Event Broker (NATS)
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	slog.Info("✅ Connected to NATS")

	// 5. Infrastructure: Cache de vues (Redis)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Warn("Failed to instrument Redis", "error", err)
	}
	defer redisClient.Close()
	slog.Info("✅ Connected to Redis")

	// 6. Infrastructure: Graphe social (Neo4j)
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		slog.Error("Unable to create Neo4j driver", "error", err)
		os.Exit(1)
	}
	defer driver.Close(ctx)

	followGraph := graph.NewNeo4jFollowGraph(driver)
	if err := followGraph.EnsureSchema(ctx); err != nil {
		// La projection est best-effort : on démarre quand même
		slog.Warn("⚠️ Failed to ensure graph schema", "error", err)
	} else {
		slog.Info("✅ Connected to Neo4j")
	}

	// 7. Session verifier (clé publique du provider d'identité)
	pubKeyPEM, err := os.ReadFile(cfg.SessionPublicKeyFile)
	if err != nil {
		slog.Error("Unable to read session public key", "file", cfg.SessionPublicKeyFile, "error", err)
		os.Exit(1)
	}
	verifier, err := security.NewSessionVerifier(pubKeyPEM)
	if err != nil {
		slog.Error("Unable to build session verifier", "error", err)
		os.Exit(1)
	}

	// 8. Adapters Driven
	actorRepo := repository.NewActorPostgresRepo(dbPool)
	edgeRepo := repository.NewEdgePostgresRepo(dbPool)
	postRepo := repository.NewPostPostgresRepo(dbPool)
	viewCache := cache.NewRedisViewCache(redisClient)
	eventPub := eventbroker.NewNatsPublisher(nc)
	mediaClient := mediastore.NewHTTPClient(cfg.MediaBaseURL, cfg.MediaPrivateKey)
	identityClient := identity.NewHTTPClient(cfg.IdentityBaseURL, cfg.IdentitySecretKey)

	// 9. Core (Domain Logic)
	interactions := services.NewInteractionService(edgeRepo, postRepo, followGraph, viewCache, eventPub)
	compose := services.NewComposeService(postRepo, mediaClient, viewCache, eventPub)
	profile := services.NewProfileService(actorRepo, mediaClient, identityClient, viewCache, eventPub)
	timeline := services.NewTimelineService(postRepo, viewCache)

	// 10. Adapter Primaire (HTTP) + chaîne de middlewares
	api := httpapi.NewServer(interactions, compose, profile, timeline)

	var h http.Handler = api.Routes()

	// A. Auth (injecte le principal)
	h = httpapi.AuthMiddleware(verifier)(h)

	// B. CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:19006"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: true,
	})
	h = c.Handler(h)

	// C. OTEL HTTP (Racine)
	h = otelhttp.NewHandler(h, "Skylark-API", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	mux := http.NewServeMux()
	mux.Handle("/v1/", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// 11. Démarrage Graceful
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	go func() {
		slog.Info("📡 Skylark listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("👋 Server exited")
}

// --- HELPERS (À déplacer un jour dans pkg/telemetry et pkg/logger) ---

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("skylark"),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
