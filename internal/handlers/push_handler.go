package handlers

import (
	"log"

	"dailyflow/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PushHandler handles HTTP requests for push subscription bookkeeping.
type PushHandler struct {
	service  *services.PushService
	validate *validator.Validate
}

// NewPushHandler creates a new PushHandler.
func NewPushHandler(service *services.PushService) *PushHandler {
	return &PushHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the push routes. Only subscribing requires
// authentication; the public key and unsubscribe endpoints are open so a
// signed-out client can still clean up its subscription.
func (h *PushHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	pushRoutes := router.Group("/push")
	pushRoutes.Get("/vapid-public-key", h.HandleVapidPublicKey)
	pushRoutes.Post("/subscribe", authRequired, h.HandleSubscribe)
	pushRoutes.Post("/unsubscribe", h.HandleUnsubscribe)
}

// SubscribeRequest represents the request body for registering a push
// subscription.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Auth     string `json:"auth" validate:"required"`
	P256dh   string `json:"p256dh" validate:"required"`
}

// UnsubscribeRequest represents the request body for removing a push
// subscription.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

// HandleVapidPublicKey returns the server's VAPID public key.
func (h *PushHandler) HandleVapidPublicKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"publicKey": h.service.PublicKey(),
	})
}

// HandleSubscribe registers a push subscription for the authenticated user.
func (h *PushHandler) HandleSubscribe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing subscribe body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.Subscribe(userID, req.Endpoint, req.Auth, req.P256dh); err != nil {
		log.Printf("Error subscribing user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Subscribed",
	})
}

// HandleUnsubscribe removes the subscription with the given endpoint.
func (h *PushHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	var req UnsubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing unsubscribe body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.Unsubscribe(req.Endpoint); err != nil {
		log.Printf("Error unsubscribing endpoint: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove subscription",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Unsubscribed",
	})
}
