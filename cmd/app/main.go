package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipvault/internal/config"
	"clipvault/internal/domain/ports/adapter"
	aiAdapters "clipvault/internal/infra/adapters/ai"
	"clipvault/internal/infra/adapters/feed"
	"clipvault/internal/infra/adapters/media"
	"clipvault/internal/infra/adapters/stt"
	tele "clipvault/internal/infra/adapters/telegram"
	pg "clipvault/internal/infra/db/postgres"
	"clipvault/internal/infra/logging"
	"clipvault/internal/infra/metrics"
	red "clipvault/internal/infra/redis"
	"clipvault/internal/infra/watch"
	"clipvault/internal/infra/web"
	"clipvault/internal/infra/worker"
	"clipvault/internal/transcript"
	"clipvault/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	consumer := queueConsumerName()
	jobQueue, err := red.NewStreamQueue(ctx, redisClient, cfg.Queue, consumer, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("job queue")
	}
	answerCache := red.NewAnswerCache(redisClient, cfg.Retrieval.CacheTTL)

	// ---- Repositories ----
	sourceRepo := pg.NewSourceRepo(pool)
	itemRepo := pg.NewItemRepo(pool)
	chunkRepo := pg.NewChunkRepo(pool, cfg.AI.EmbeddingDim)
	txManager := pg.NewTxManager(pool)

	// ---- AI adapters (OpenAI -> Gemini -> noop in dev) ----
	var (
		embedder  adapter.Embedder
		generator adapter.Generator
	)
	switch {
	case cfg.AI.OpenAIKey != "":
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.EmbeddingModel, cfg.AI.ChatModel, cfg.AI.EmbeddingDim)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		embedder, generator = oa, oa
		logger.Info().Str("embed_model", cfg.AI.EmbeddingModel).Str("chat_model", cfg.AI.ChatModel).Msg("AI adapter: OpenAI")
	case cfg.AI.GeminiKey != "":
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.EmbeddingModel, cfg.AI.ChatModel, cfg.AI.EmbeddingDim)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		embedder, generator = ga, ga
		logger.Info().Str("chat_model", cfg.AI.ChatModel).Msg("AI adapter: Gemini")
	case cfg.Runtime.Dev:
		noop := aiAdapters.NewNoopAI(cfg.AI.EmbeddingDim)
		embedder, generator = noop, noop
		logger.Warn().Msg("AI adapter: noop (dev mode)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}

	// ---- Pipeline collaborators ----
	fetcher := media.NewYtdlpFetcher(cfg.Media.YtdlpPath, cfg.Media.WorkDir)

	whisperURL := cfg.AI.WhisperURL
	if whisperURL == "" {
		whisperURL = "https://api.openai.com"
	}
	var transcriber adapter.Transcriber
	if cfg.AI.OpenAIKey == "" && cfg.Runtime.Dev {
		transcriber = stt.NewNoopTranscriber()
		logger.Warn().Msg("transcriber: noop (dev mode)")
	} else {
		transcriber, err = stt.NewWhisperTranscriber(whisperURL, cfg.AI.OpenAIKey, "whisper-1")
		if err != nil {
			logger.Fatal().Err(err).Msg("whisper transcriber")
		}
	}

	var notifier adapter.Notifier
	if cfg.Telegram.Token != "" {
		notifier, err = tele.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
	} else {
		notifier = tele.NewNoopNotifier()
	}

	packer := transcript.NewPacker(cfg.Chunking.MaxChars)

	// ---- Use cases ----
	sourceUC := usecase.NewSourceUseCase(sourceRepo, logger)
	itemUC := usecase.NewItemUseCase(itemRepo, jobQueue, logger)
	answerUC, err := usecase.NewAnswerUseCase(chunkRepo, embedder, generator, answerCache, cfg.Retrieval, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("answer engine")
	}

	// ---- Background loops ----
	watcher := watch.NewWatcher(sourceRepo, itemRepo, jobQueue, feed.NewRSSFetcher(30*time.Second), cfg.Watcher.PollInterval, logger)
	go watcher.Start(ctx)

	reconciler := watch.NewReconciler(itemRepo, jobQueue, cfg.Watcher.SweepInterval, cfg.Watcher.SweepStaleAfter, logger)
	go reconciler.Start(ctx)

	processor := worker.NewProcessor(
		itemRepo, chunkRepo, txManager, jobQueue,
		fetcher, transcriber, embedder, notifier,
		packer, cfg.Worker, logger,
	)
	workerPool := worker.NewPool(cfg.Worker.Count)
	workerPool.Start(ctx, processor.Run)

	// ---- HTTP API ----
	auth := web.NewAuthManager(cfg.API.JWTSecret, 30*time.Minute)
	srv := web.NewServer(sourceUC, itemUC, answerUC, auth, cfg.API.AdminKey, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("http api listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	cancel()
	workerPool.Wait()
	logger.Info().Msg("workers drained; bye")
}

func queueConsumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
