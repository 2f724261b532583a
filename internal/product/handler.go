package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/user"
)

// Handler serves the shopping catalog plus the admin inventory routes.
type Handler struct {
	service    *Service
	uploadsDir string
}

func NewHandler(s *Service, uploadsDir string) *Handler {
	return &Handler{service: s, uploadsDir: uploadsDir}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/shopping", h.list)
	app.Get("/product/:id", h.getByID)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App) {
	app.Get("/inventory", user.AdminOnly, h.list)
	app.Post("/addProduct", user.AdminOnly, h.add)
	app.Post("/updateProduct/:id", user.AdminOnly, h.update)
	app.Post("/deleteProduct/:id", user.AdminOnly, h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	p, err := h.service.GetByID(id)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(p)
}

func (h *Handler) add(c *fiber.Ctx) error {
	p, err := h.parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(p)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create product"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	p, err := h.parseProductForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(id, p)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update product"})
	}
	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}
	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete product"})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// parseProductForm accepts multipart form fields plus an optional image file
// saved under the uploads dir; the stored image value is its public path.
func (h *Handler) parseProductForm(c *fiber.Ctx) (Product, error) {
	name := c.FormValue("productName")
	if name == "" {
		return Product{}, fiber.NewError(fiber.StatusBadRequest, "productName is required")
	}
	qty, _ := strconv.Atoi(c.FormValue("quantity"))
	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	if qty < 0 || price < 0 {
		return Product{}, fiber.NewError(fiber.StatusBadRequest, "quantity and price must be non-negative")
	}

	image := c.FormValue("image")
	if file, err := c.FormFile("image"); err == nil {
		dest := h.uploadsDir + "/" + file.Filename
		if err := c.SaveFile(file, dest); err != nil {
			logrus.WithError(err).Warn("product image save failed")
		} else {
			image = "/uploads/" + file.Filename
		}
	}

	return Product{Name: name, Quantity: qty, Price: price, Image: image}, nil
}
