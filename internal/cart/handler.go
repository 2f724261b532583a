package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/cart", h.list)
	app.Post("/add-to-cart/:id", h.add)
	app.Post("/update-cart/:id", h.update)
	app.Post("/cart/remove/:id", h.remove)
	app.Post("/cart/clear", h.clear)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, err := h.service.List(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"cart": items, "total": Total(items)})
}

func (h *Handler) add(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := c.ParamsInt("id")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	qty := parseQuantity(c, 1)

	items, warning, err := h.service.Add(userID, productID, qty)
	if err != nil {
		if err == product.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(cartResponse(items, warning))
}

func (h *Handler) update(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := c.ParamsInt("id")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	qty := parseQuantity(c, 1)

	items, warning, err := h.service.Update(userID, productID, qty)
	if err != nil {
		switch err {
		case ErrItemNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Item not found in cart."})
		case product.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(cartResponse(items, warning))
}

func (h *Handler) remove(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	productID, err := c.ParamsInt("id")
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	items, err := h.service.Remove(userID, productID)
	if err != nil {
		if err == ErrItemNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Item not found in cart."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(cartResponse(items, ""))
}

func (h *Handler) clear(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared!"})
}

func parseQuantity(c *fiber.Ctx, fallback int) int {
	if v := c.FormValue("quantity"); v != "" {
		if qty, err := strconv.Atoi(v); err == nil {
			return qty
		}
	}
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&payload); err == nil && payload.Quantity != 0 {
		return payload.Quantity
	}
	return fallback
}

func cartResponse(items []Item, warning string) fiber.Map {
	resp := fiber.Map{"cart": items, "total": Total(items)}
	if warning != "" {
		resp["message"] = warning
	}
	return resp
}
