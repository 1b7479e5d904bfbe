package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/omarshanyour/nutrimind-backend/internal/coach"
	"github.com/omarshanyour/nutrimind-backend/internal/config"
	"github.com/omarshanyour/nutrimind-backend/internal/feed"
	"github.com/omarshanyour/nutrimind-backend/internal/kv"
	"github.com/omarshanyour/nutrimind-backend/internal/llm"
	"github.com/omarshanyour/nutrimind-backend/internal/meals"
	"github.com/omarshanyour/nutrimind-backend/internal/metrics"
	"github.com/omarshanyour/nutrimind-backend/internal/tracker"

	log "github.com/sirupsen/logrus"
)

// server owns the long-lived clients and both HTTP listeners.
type server struct {
	cfg          *config.Config
	handler      *Handler
	promRegistry *prometheus.Registry

	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	httpServer        *http.Server
	metricsHttpServer *http.Server
}

func newServer(ctx context.Context, cfg *config.Config) (*server, error) {
	s := &server{cfg: cfg, promRegistry: prometheus.NewRegistry()}
	s.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager("nutrimind", "api", s.promRegistry)

	store, err := s.setupStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.UsesRedis() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password: cfg.Secrets.RedisPassword,
			DB:       0,
		})
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			return nil, multierr.Append(fmt.Errorf("redis ping: %w", err), s.close())
		}
		log.Debugf("redis client connected to %s", s.redisClient.Options().Addr)
	}

	var transcripts coach.TranscriptStore = coach.NewMemoryTranscripts()
	if cfg.TranscriptBackend == "redis" {
		transcripts = coach.NewRedisTranscripts(s.redisClient, cfg.SessionMaxAge())
	}

	h := &Handler{
		tracker:       tracker.NewService(store, nil),
		feeds:         feed.NewClient(&http.Client{Timeout: cfg.FeedTimeout()}, cfg.NewsFeedURL, cfg.DealsAPIURL, cfg.Secrets.NewsAPIKey, cfg.FeedCacheSeconds),
		metrics:       metricsManager,
		chatRateLimit: cfg.ChatRateLimit,
		sessionCookie: cfg.SessionCookie,
		sessionMaxAge: cfg.SessionMaxAge(),
	}
	if cfg.ChatRateLimit > 0 {
		h.limiter = redis_rate.NewLimiter(s.redisClient)
	}

	if cfg.Secrets.OpenAIAPIKey == "" {
		log.Errorf("AI provider key not set, use OPENAI_API_KEY env var to set it; chat and meal estimation will answer 500")
	} else {
		gen, err := llm.NewOpenAI(cfg.Secrets.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel, cfg.LLMTimeout(), nil)
		if err != nil {
			return nil, multierr.Append(err, s.close())
		}
		h.coach = coach.New(gen, transcripts, cfg.ChatModel, cfg.QuickCoachModel,
			coach.WithChatTemperature(cfg.ChatTemp()))
		h.estimator = meals.NewEstimator(gen, cfg.MealTextModel, cfg.MealPhotoModel)
	}
	if cfg.Secrets.NewsAPIKey == "" {
		log.Warnln("NEWSAPI_KEY not set, /api/deals will answer ok=false")
	}

	s.handler = h
	return s, nil
}

func (s *server) setupStore(ctx context.Context) (kv.Store, error) {
	if s.cfg.StorageBackend != "postgres" {
		log.Debugln("using in-memory storage, records are lost on restart")
		return kv.NewMemory(), nil
	}
	pool, err := kv.NewPool(ctx, s.cfg.Secrets.DatabaseURL)
	if err != nil {
		return nil, err
	}
	s.dbPool = pool
	log.Debugln("db pool ready")
	return kv.NewPostgres(pool), nil
}

// serve starts the API listener and, when configured, the metrics listener.
func (s *server) serve() {
	ipAndPort := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.httpServer = &http.Server{
		Handler:      s.handler.newRouter(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	if s.cfg.MetricsPort <= 0 {
		log.Debugln("metrics listener disabled")
		return
	}

	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{})))
	metricsAddr := net.JoinHostPort(s.cfg.MetricsHost, strconv.Itoa(s.cfg.MetricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()
}

// gracefulShutdown stops both listeners and releases the clients.
func (s *server) gracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = multierr.Append(err, s.httpServer.Shutdown(ctx))
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		err = multierr.Append(err, s.metricsHttpServer.Shutdown(ctx))
		log.Warnln("metrics server shut down")
	}
	return multierr.Append(err, s.close())
}

func (s *server) close() error {
	var err error
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close()
	}
	return err
}
