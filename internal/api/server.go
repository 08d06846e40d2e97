// Package api exposes the schedule and the selection session over HTTP for the
// single-page front-end.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"bus-schedule/internal/session"
)

func NewApp(sess *session.Session, m Metrics) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	webApp.Use(NewLogger(m))
	webApp.Use(cors.New())

	h := &handlers{session: sess}

	webApp.Get("/healthz", h.health)
	webApp.Get("/routes", h.listRoutes)
	webApp.Get("/board", h.board)
	webApp.Get("/today", h.today)

	departuresRouter(webApp.Group("/departures"), h)
	sessionRouter(webApp.Group("/session"), h)

	return webApp
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, webApp *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- webApp.Listen(addr)
	}()
	log.Info().Str("addr", addr).Msg("api listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := webApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		return err
	}
	return <-errCh
}
