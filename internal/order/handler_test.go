package order

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/marcusyeo/supermarket-backend/internal/cart"
	"github.com/marcusyeo/supermarket-backend/internal/product"
)

func makeAppWithOrderHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id, "role": c.Get("X-User-Role")}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	h.RegisterAdminRoutes(app)
	return app
}

func TestOrderHistory(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.Create(Order{
		UserID: 7,
		Items:  []cart.Item{{ProductID: 1, ProductName: "Rice", Price: 10.00, Quantity: 1}},
		Total:  10.00,
		Status: StatusPaid,
	}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	products := product.NewService(product.NewInMemoryRepository(nil))
	app := makeAppWithOrderHandler(NewHandler(NewService(repo), products))

	// unauthorized
	req := httptest.NewRequest("GET", "/orders", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 unauthenticated, got %d", res.StatusCode)
	}

	// history carries the receipt link
	req2 := httptest.NewRequest("GET", "/orders", nil)
	req2.Header.Set("X-User-ID", "7")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), "/receipts/receipt-1.pdf") {
		t.Fatalf("expected receipt link in history, got %s", string(b2))
	}

	// another user sees nothing
	req3 := httptest.NewRequest("GET", "/orders", nil)
	req3.Header.Set("X-User-ID", "8")
	res3, _ := app.Test(req3)
	b3, _ := io.ReadAll(res3.Body)
	if strings.Contains(string(b3), "Rice") {
		t.Fatalf("expected empty history for other user, got %s", string(b3))
	}
}

func TestAdminDashboard_RoleGated(t *testing.T) {
	repo := NewInMemoryRepository()
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Rice", Quantity: 10, Price: 10.00},
	}))
	app := makeAppWithOrderHandler(NewHandler(NewService(repo), products))

	// plain user is rejected
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("X-User-Role", "user")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", res.StatusCode)
	}

	// admin gets products and orders
	req2 := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req2.Header.Set("X-User-ID", "1")
	req2.Header.Set("X-User-Role", "admin")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res2.StatusCode)
	}
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), "products") || !strings.Contains(string(b2), "orders") {
		t.Fatalf("expected dashboard payload, got %s", string(b2))
	}
}
