package handlers

import (
	"errors"
	"log"

	"dailyflow/internal/repositories"
	"dailyflow/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReminderHandler handles HTTP requests for reminders.
type ReminderHandler struct {
	service  *services.ReminderService
	validate *validator.Validate
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(service *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the reminder routes. The router must already
// require authentication.
func (h *ReminderHandler) RegisterRoutes(router fiber.Router) {
	reminderRoutes := router.Group("/reminders")
	reminderRoutes.Get("/", h.HandleListReminders)
	reminderRoutes.Post("/", h.HandleCreateReminder)
	reminderRoutes.Patch("/:id/toggle", h.HandleToggleReminder)
	reminderRoutes.Patch("/:id", h.HandleUpdateReminder)
	reminderRoutes.Delete("/:id", h.HandleDeleteReminder)
	reminderRoutes.Delete("/", h.HandleDeleteAllReminders)
}

// CreateReminderRequest represents the request body for creating a reminder.
type CreateReminderRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Category string `json:"category" validate:"required,oneof=Study Water Health Custom"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Repeat   string `json:"repeat" validate:"omitempty,oneof=None Daily Weekly"`
	Notes    string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateReminderRequest represents a partial reminder update. Absent fields
// are left untouched.
type UpdateReminderRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Category  *string `json:"category" validate:"omitempty,oneof=Study Water Health Custom"`
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time      *string `json:"time" validate:"omitempty,datetime=15:04"`
	Repeat    *string `json:"repeat" validate:"omitempty,oneof=None Daily Weekly"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
	Completed *bool   `json:"completed"`
}

// HandleListReminders retrieves all reminders of the authenticated user.
func (h *ReminderHandler) HandleListReminders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	reminders, err := h.service.List(userID)
	if err != nil {
		log.Printf("Error listing reminders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve reminders",
		})
	}
	return c.JSON(reminders)
}

// HandleCreateReminder creates a new reminder for the authenticated user.
func (h *ReminderHandler) HandleCreateReminder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create reminder body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	reminder, err := h.service.Create(userID, req.Title, req.Category, req.Date, req.Time, req.Repeat, req.Notes)
	if err != nil {
		log.Printf("Error creating reminder for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create reminder",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(reminder)
}

// HandleUpdateReminder applies a partial update to a reminder.
func (h *ReminderHandler) HandleUpdateReminder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reminderID := c.Params("id")

	var req UpdateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update reminder body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	reminder, err := h.service.Update(reminderID, userID, services.ReminderUpdate{
		Title:     req.Title,
		Category:  req.Category,
		Date:      req.Date,
		Time:      req.Time,
		Repeat:    req.Repeat,
		Notes:     req.Notes,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Reminder not found",
			})
		}
		log.Printf("Error updating reminder %s: %v", reminderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update reminder",
		})
	}

	return c.JSON(reminder)
}

// HandleToggleReminder flips the completed flag of a reminder.
func (h *ReminderHandler) HandleToggleReminder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reminderID := c.Params("id")

	reminder, err := h.service.ToggleComplete(reminderID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Reminder not found",
			})
		}
		log.Printf("Error toggling reminder %s: %v", reminderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not toggle reminder",
		})
	}

	return c.JSON(reminder)
}

// HandleDeleteReminder deletes a single reminder.
func (h *ReminderHandler) HandleDeleteReminder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	reminderID := c.Params("id")

	deleted, err := h.service.Delete(reminderID, userID)
	if err != nil {
		log.Printf("Error deleting reminder %s: %v", reminderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete reminder",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Reminder not found",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDeleteAllReminders deletes every reminder of the authenticated user.
func (h *ReminderHandler) HandleDeleteAllReminders(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.service.DeleteAll(userID); err != nil {
		log.Printf("Error deleting reminders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete reminders",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
