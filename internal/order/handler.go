package order

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

// Handler serves order history for customers and the admin dashboard.
type Handler struct {
	service  *Service
	products product.ServiceInterface
}

func NewHandler(s *Service, products product.ServiceInterface) *Handler {
	return &Handler{service: s, products: products}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/orders", h.history)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App) {
	app.Get("/admin/dashboard", user.AdminOnly, h.dashboard)
	app.Get("/admin/orders", user.AdminOnly, h.listAll)
}

func (h *Handler) history(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	for i := range orders {
		orders[i].ReceiptLink = fmt.Sprintf("/receipts/receipt-%d.pdf", orders[i].ID)
	}
	return c.JSON(orders)
}

// dashboard bundles the inventory and all orders into one payload for the
// admin landing page.
func (h *Handler) dashboard(c *fiber.Ctx) error {
	orders, err := h.service.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{
		"products": h.products.List(),
		"orders":   orders,
	})
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	orders, err := h.service.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}
