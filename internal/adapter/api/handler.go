package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/usecase"
)

type ServiceInfo struct {
	Name    string
	Title   string
	Version string
}

type Handler struct {
	info         ServiceInfo
	orchestrator *usecase.Orchestrator
	billing      *usecase.Billing
	showcase     *usecase.Showcase // nil when the archive is disabled
	logger       *zap.Logger
}

func NewHandler(info ServiceInfo, orch *usecase.Orchestrator, billing *usecase.Billing, showcase *usecase.Showcase, logger *zap.Logger) *Handler {
	return &Handler{info: info, orchestrator: orch, billing: billing, showcase: showcase, logger: logger}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.info.Name,
		"version": h.info.Version,
	})
}

func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"total_generations": h.orchestrator.TotalGenerations(c.UserContext()),
		"service":           h.info.Name,
	})
}

func (h *Handler) HandleGenerate(c *fiber.Ctx) error {
	var req entity.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// The delivery layer maps the business outcome to HTTP status codes
	res, decision, err := h.orchestrator.Execute(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Generatie mislukt. Probeer het later opnieuw.",
		})
	}
	if decision.RequiresPayment {
		return c.JSON(decision)
	}
	return c.JSON(res)
}

type paymentRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Tier   string `json:"tier"`
	Result string `json:"result"`
}

func (h *Handler) HandlePaymentWebhook(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	tier, err := h.billing.ConfirmPayment(c.UserContext(), req.Email, req.Name, req.Tier)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidTier) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Ongeldig tier"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal error"})
	}
	return c.JSON(fiber.Map{"status": "paid", "tier": tier})
}

func (h *Handler) HandleCheckout(c *fiber.Ctx) error {
	var req entity.Checkout
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	h.billing.RegisterCheckout(c.UserContext(), req)
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Gelukt! U ontvangt een bevestiging per email.",
	})
}

func (h *Handler) HandleSimilar(c *fiber.Ctx) error {
	items, err := h.showcase.Similar(c.UserContext(), c.Query("q"), c.QueryInt("limit", usecase.DefaultSimilarLimit))
	switch {
	case errors.Is(err, entity.ErrArchiveDisabled):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		h.logger.Error("similar lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
	}
	return c.JSON(fiber.Map{"items": items})
}
