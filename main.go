package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"matchcore/src/engine"
	"matchcore/src/feed"
	"matchcore/src/handlers"
	"matchcore/src/logger"
	"matchcore/src/routes"
	"matchcore/src/venue"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()

	log.Info().Msg("Initializing matching engine")

	feedDepth := 10
	if envDepth := os.Getenv("FEED_DEPTH"); envDepth != "" {
		if parsed, err := strconv.Atoi(envDepth); err == nil && parsed > 0 {
			feedDepth = parsed
		}
	}

	// router is declared before the broadcaster so the broadcaster's
	// bookLookup closure can capture it by reference: the closure is only
	// ever invoked after router is assigned below, breaking the otherwise
	// circular construction order between Router (needs a Sink) and
	// Broadcaster (needs a way to look up a Router's books).
	var router *venue.Router
	broadcaster := feed.NewBroadcaster(feedDepth, func(symbol string) *engine.Book {
		if router == nil {
			return nil
		}
		return router.BookFor(symbol)
	})
	router = venue.NewRouter(engine.SystemClock{}, broadcaster)

	orderHandler := handlers.NewOrderHandler(router, broadcaster)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, orderHandler)

	port := ":8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	feedAddr := ":8081"
	if envFeedPort := os.Getenv("FEED_PORT"); envFeedPort != "" {
		feedAddr = ":" + envFeedPort
	}

	wsServer := feed.NewServer(broadcaster)
	feedMux := http.NewServeMux()
	feedMux.Handle("/api/v1/stream/", wsServer.Handler())
	feedHTTP := &http.Server{
		Addr:    feedAddr,
		Handler: feedMux,
	}

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			// edge case: ignore shutdown errors, only report real errors
			errStr := err.Error()
			if errStr != "server is shutting down" {
				serverError <- err
			}
		}
	}()

	go func() {
		if err := feedHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Str("hint", "Port may be already in use. Try: PORT=3000 go run main.go").
			Msg("Server failed to start")
	default:
		log.Info().
			Str("port", port).
			Str("feed_port", feedAddr).
			Msg("Matching engine started")

		log.Info().
			Strs("endpoints", []string{
				"POST   /api/v1/orders",
				"PATCH  /api/v1/orders/:id",
				"DELETE /api/v1/orders/:id",
				"GET    /api/v1/orders/:id",
				"GET    /api/v1/orderbook/:symbol",
				"GET    /health",
				"GET    /metrics",
				"WS     " + feedAddr + "/api/v1/stream/:symbol",
			}).
			Msg("API endpoints registered")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case <-quit:
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Str("feed_port", feedAddr).
			Msg("Server failed")
	}
	log.Info().Msg("Received shutdown signal, shutting down...")

	shutdownTimeout := 10 * time.Second
	if envTimeout := os.Getenv("SHUTDOWN_TIMEOUT"); envTimeout != "" {
		if parsed, err := time.ParseDuration(envTimeout); err == nil && parsed > 0 {
			shutdownTimeout = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", shutdownTimeout).
				Msg("Timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}

	_ = feedHTTP.Shutdown(ctx)

	logger.CloseLogger()
}
