package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	goCaptcha "github.com/hearsum/goCaptcha"
	"github.com/hearsum/goCaptcha/corpus"
	"github.com/hearsum/goCaptcha/metrics/export/prometheus"
	"github.com/hearsum/goCaptcha/provider/embedding"
	"github.com/hearsum/goCaptcha/provider/freesound"
	"github.com/hearsum/goCaptcha/provider/httptts"
)

func main() {
	redisAddr := envOr("REDIS_ADDR", "localhost:6379")
	listenAddr := envOr("LISTEN_ADDR", ":8000")
	staticDir := envOr("STATIC_DIR", "./static")
	ttsBaseURL := envOr("TTS_BASE_URL", "http://localhost:5002")
	embeddingBaseURL := envOr("EMBEDDING_BASE_URL", "http://localhost:5003")
	freesoundKey := os.Getenv("FREESOUND_API_KEY")
	passTokenSecret := os.Getenv("PASS_TOKEN_SECRET")

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("error closing redis connection: %v", err)
		}
	}()

	synth, err := httptts.NewClient(httptts.Config{BaseURL: ttsBaseURL})
	if err != nil {
		log.Fatalf("failed to initialize tts client: %v", err)
	}

	embedder, err := embedding.NewClient(embedding.Config{BaseURL: embeddingBaseURL})
	if err != nil {
		log.Fatalf("failed to initialize embedding client: %v", err)
	}

	builder := goCaptcha.New().
		WithRedis(redisClient).
		WithSynthesizer(synth).
		WithEmbedder(embedder).
		WithCorpus(corpus.Portuguese()).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)

	// Without a Freesound key every challenge degrades to lexical or synthetic
	// noise; the engine stays fully functional.
	if freesoundKey != "" {
		sounds, err := freesound.NewClient(freesound.Config{APIKey: freesoundKey})
		if err != nil {
			log.Fatalf("failed to initialize freesound client: %v", err)
		}
		builder = builder.WithSoundLibrary(sounds)
	} else {
		log.Println("FREESOUND_API_KEY not set, environmental challenges disabled")
	}

	if passTokenSecret != "" {
		builder = builder.WithConfig(configWithPassTokens(passTokenSecret)).
			WithMetricsEnabled(true).
			WithLatencyHistograms(true)
	}

	engine, err := builder.Build()
	if err != nil {
		log.Fatalf("failed to build captcha engine: %v", err)
	}
	defer engine.Close()

	app := fiber.New(fiber.Config{
		AppName:      "goCaptcha Server",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: envOr("CORS_ALLOW_ORIGINS", "*"),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	app.Use(securityHeaders)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	exporter := prometheus.NewPrometheusExporter(engine)
	app.Get("/metrics", adaptor.HTTPHandler(exporter.Handler()))

	app.Get("/audio-captcha", func(c *fiber.Ctx) error {
		ctx := goCaptcha.WithClientKey(c.UserContext(), c.IP())

		result, err := engine.IssueChallenge(ctx)
		if err != nil {
			return captchaError(c, err)
		}

		return c.JSON(fiber.Map{
			"audio":         result.Audio,
			"captcha_id":    result.CaptchaID,
			"session_token": result.SessionToken,
			"expires_at":    result.ExpireAt,
		})
	})

	app.Post("/verify-captcha", func(c *fiber.Ctx) error {
		var req struct {
			CaptchaID    string `json:"captcha_id"`
			SessionToken string `json:"session_token"`
			Answer       string `json:"answer"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.CaptchaID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_id required"})
		}

		ctx := goCaptcha.WithClientKey(c.UserContext(), c.IP())

		result, err := engine.VerifyChallenge(ctx, req.CaptchaID, req.SessionToken, req.Answer)
		if err != nil {
			return captchaError(c, err)
		}

		resp := fiber.Map{
			"success": result.Success,
			"message": result.Message,
		}
		if result.PassToken != "" {
			resp["pass_token"] = result.PassToken
		}
		return c.JSON(resp)
	})

	app.Static("/", staticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Printf("server starting on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			log.Printf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}

func configWithPassTokens(secret string) goCaptcha.Config {
	cfg := goCaptcha.DefaultConfig()
	cfg.PassToken.Enabled = true
	cfg.PassToken.PrivateKey = []byte(secret)
	cfg.PassToken.Issuer = envOr("PASS_TOKEN_ISSUER", "gocaptcha")
	if ttl := os.Getenv("PASS_TOKEN_TTL_SECONDS"); ttl != "" {
		if secs, err := strconv.Atoi(ttl); err == nil && secs > 0 {
			cfg.PassToken.TTL = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

func securityHeaders(c *fiber.Ctx) error {
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	return c.Next()
}

func captchaError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, goCaptcha.ErrCaptchaNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "captcha not found"})
	case errors.Is(err, goCaptcha.ErrCaptchaExpired):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "captcha expired"})
	case errors.Is(err, goCaptcha.ErrSessionTokenInvalid):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid session token"})
	case errors.Is(err, goCaptcha.ErrInputTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "answer too long"})
	case errors.Is(err, goCaptcha.ErrIssueRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
	default:
		// Opaque on purpose: backend details never reach clients.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
