package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tradepost/internal/middleware"
	"tradepost/internal/models"
	"tradepost/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const wsWriteTimeout = 10 * time.Second

// PurchaseEventsUpgrade guards GET /api/purchases/:id/ws. Only the buyer and
// seller of the purchase may open the stream.
func (s *Server) PurchaseEventsUpgrade(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if s.subscriber == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Live updates are not available",
		})
	}
	if _, err := s.purchaseService.GetForParticipant(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Locals("purchaseID", id)
	return c.Next()
}

// PurchaseEventsSocket streams the events of one purchase as JSON frames
// until the client disconnects.
func (s *Server) PurchaseEventsSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		purchaseID, _ := conn.Locals("purchaseID").(uint)
		userID, _ := conn.Locals("userID").(uint)
		logger := middleware.Logger.With(
			slog.Uint64("purchase_id", uint64(purchaseID)),
			slog.Uint64("user_id", uint64(userID)),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Events arrive on the subscription goroutine; writes are serialized.
		var writeMu sync.Mutex
		send := func(v any) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return conn.WriteJSON(v)
		}

		err := s.subscriber.Subscribe(ctx, purchaseID, func(evt notifications.Event) {
			if err := send(evt); err != nil {
				logger.Debug("dropping purchase watcher", slog.String("error", err.Error()))
				cancel()
				_ = conn.Close()
			}
		})
		if err != nil {
			logger.Error("failed to subscribe to purchase events", slog.String("error", err.Error()))
			_ = send(fiber.Map{"error": "subscription failed"})
			return
		}
		if err := send(fiber.Map{"type": "subscribed", "purchase_id": purchaseID}); err != nil {
			return
		}
		logger.Info("purchase watcher connected")

		// Clients never send anything; reading only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Info("purchase watcher disconnected")
				return
			}
		}
	})
}
