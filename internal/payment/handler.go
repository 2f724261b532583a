package payment

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Handler serves the asynchronous webhook endpoints. Webhooks are public
// routes: authenticity comes from the signature, not a JWT.
type Handler struct {
	repo   Repository
	hitpay *HitPayProvider
}

func NewHandler(repo Repository, hitpay *HitPayProvider) *Handler {
	return &Handler{repo: repo, hitpay: hitpay}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/webhooks/hitpay", h.hitpayWebhook)
}

type hitpayWebhookPayload struct {
	PaymentID        string `json:"payment_id"`
	PaymentRequestID string `json:"payment_request_id"`
	Status           string `json:"status"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
}

// hitpayWebhook verifies the HMAC signature over the raw body, then upgrades
// the payment row's provisional id to the real charge id. Events that cannot
// be mapped to a known payment are acknowledged with 200 so the provider
// stops retrying.
func (h *Handler) hitpayWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get(HitPaySignatureHeader)
	if signature == "" || !h.hitpay.VerifyWebhook(body, signature) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid signature"})
	}

	var payload hitpayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed payload"})
	}

	pm, err := h.repo.GetByProviderOrderID(payload.PaymentRequestID)
	if err != nil {
		// Unknown payment request: ack so the provider stops retrying.
		logrus.WithField("payment_request_id", payload.PaymentRequestID).
			Warn("hitpay webhook for unknown payment request")
		return c.SendStatus(fiber.StatusOK)
	}

	if payload.Status == HitPayCompleted && payload.PaymentID != "" {
		if err := h.repo.ResolveChargeID(pm.OrderID, payload.PaymentID); err != nil {
			logrus.WithError(err).WithField("orderId", pm.OrderID).Error("resolve charge id failed")
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	if payload.Status != "" {
		if err := h.repo.UpdateStatus(pm.OrderID, payload.Status); err != nil {
			logrus.WithError(err).WithField("orderId", pm.OrderID).Error("payment status update failed")
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
