package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/superapp/marketplace-approvals/internal/store"
)

func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, handler *ApprovalHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc == nil || !nc.IsConnected() {
			checks["nats"] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
			checks["nats"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	mp := app.Group("/api/marketplace")
	mp.Get("/pending", handler.PendingSummaryHandler)

	mp.Post("/products", handler.CreateProductHandler)
	mp.Post("/partners", handler.CreatePartnerHandler)
	mp.Post("/assets", handler.CreateAssetHandler)
	mp.Post("/change-requests", handler.CreateChangeRequestHandler)

	mp.Get("/change-requests/product/:productId", handler.ListChangeRequestsByProductHandler)
	mp.Get("/:entityType", handler.ListEntitiesHandler)
	mp.Get("/:entityType/pending", handler.ListPendingEntitiesHandler)
	mp.Get("/:entityType/:id", handler.GetEntityHandler)
	mp.Patch("/:entityType/:id/approve", handler.ApproveHandler)
	mp.Patch("/:entityType/:id/reject", handler.RejectHandler)
}
