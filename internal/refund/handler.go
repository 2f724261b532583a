package refund

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

// Handler serves the customer-service refund endpoints plus the admin
// approve/reject workflow.
type Handler struct {
	service *Service
	orders  *order.Service
}

func NewHandler(service *Service, orders *order.Service) *Handler {
	return &Handler{service: service, orders: orders}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/customer-service", h.customerService)
	app.Post("/customer-service/refund", h.createRequest)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App) {
	app.Get("/admin/refunds", user.AdminOnly, h.listAll)
	app.Post("/admin/refunds/:id/approve", user.AdminOnly, h.approve)
	app.Post("/admin/refunds/:id/reject", user.AdminOnly, h.reject)
}

// customerService returns the user's orders alongside their refund requests,
// so the page can show which orders are still refundable.
func (h *Handler) customerService(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.orders.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	requests, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"orders": orders, "refundRequests": requests})
}

func (h *Handler) createRequest(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var payload struct {
		OrderID int    `json:"orderId" form:"orderId"`
		Reason  string `json:"reason" form:"reason"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OrderID == 0 {
		if id, err := strconv.Atoi(c.FormValue("orderId")); err == nil {
			payload.OrderID = id
		}
	}

	req, err := h.service.CreateRequest(userID, payload.OrderID, payload.Reason)
	if err != nil {
		switch err {
		case order.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case ErrNotOwner:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "You can only request refunds for your own orders"})
		case ErrNotRefundable:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only paid orders can be refunded"})
		case ErrReasonRequired:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide a reason for the refund"})
		case ErrDuplicateRequest:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A refund request for this order is already pending"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	rows, err := h.service.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(rows)
}

func (h *Handler) approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request id"})
	}
	adminNote := c.FormValue("adminNote")

	audit, err := h.service.Approve(c.Context(), id, adminNote)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Refund request not found"})
		case ErrAlreadyDecided:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Refund request already decided"})
		case ErrNoPaymentInfo:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No payment information for this order; refund it manually"})
		default:
			logrus.WithError(err).WithField("requestId", id).Error("refund approval failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "Refund failed: " + err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Refund approved", "refund": audit})
}

func (h *Handler) reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid request id"})
	}
	adminNote := c.FormValue("adminNote")

	if err := h.service.Reject(id, adminNote); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Refund request not found"})
		case ErrAlreadyDecided:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Refund request already decided"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Refund request rejected"})
}
