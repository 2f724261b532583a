package cart

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/marcusyeo/supermarket-backend/internal/product"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func newCartApp(products []product.Product) *fiber.App {
	productService := product.NewService(product.NewInMemoryRepository(products))
	service := NewService(NewInMemoryRepository(), productService)
	return makeAppWithCartHandler(NewHandler(service))
}

func TestCartRoutes_Basic(t *testing.T) {
	app := newCartApp([]product.Product{
		{ID: 1, Name: "Milk", Quantity: 10, Price: 3.50},
		{ID: 2, Name: "Bread", Quantity: 5, Price: 2.00},
	})

	// unauthorized access should be blocked
	req := httptest.NewRequest("GET", "/cart", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// authorized GET on an empty cart
	req2 := httptest.NewRequest("GET", "/cart", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for authenticated GET, got %d", res2.StatusCode)
	}

	// add product 1 twice: quantities accumulate
	req3 := httptest.NewRequest("POST", "/add-to-cart/1", strings.NewReader(`{"quantity":2}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res3.StatusCode)
	}

	req4 := httptest.NewRequest("POST", "/add-to-cart/1", strings.NewReader(`{"quantity":1}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req4)
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), `"quantity":3`) {
		t.Fatalf("expected quantity 3 after second add, got %s", string(b4))
	}

	// total reflects price x quantity
	if !strings.Contains(string(b4), `"total":10.5`) {
		t.Fatalf("expected total 10.5, got %s", string(b4))
	}

	// unknown product
	req5 := httptest.NewRequest("POST", "/add-to-cart/99", nil)
	req5.Header.Set("X-User-ID", "42")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res5.StatusCode)
	}

	// remove product 1, cart ends up empty
	req6 := httptest.NewRequest("POST", "/cart/remove/1", nil)
	req6.Header.Set("X-User-ID", "42")
	res6, _ := app.Test(req6)
	b6, _ := io.ReadAll(res6.Body)
	if res6.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for remove, got %d", res6.StatusCode)
	}
	if strings.Contains(string(b6), `"productId":1`) {
		t.Fatalf("expected product 1 removed, got %s", string(b6))
	}

	// removing again reports item not found
	req7 := httptest.NewRequest("POST", "/cart/remove/1", nil)
	req7.Header.Set("X-User-ID", "42")
	res7, _ := app.Test(req7)
	if res7.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 removing missing item, got %d", res7.StatusCode)
	}
}

func TestCartAdd_CapsAtStock(t *testing.T) {
	app := newCartApp([]product.Product{{ID: 1, Name: "Eggs", Quantity: 3, Price: 4.00}})

	// request five units when only three exist
	req := httptest.NewRequest("POST", "/add-to-cart/1", strings.NewReader(`{"quantity":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"quantity":3`) {
		t.Fatalf("expected capped quantity 3, got %s", string(b))
	}
	if !strings.Contains(string(b), "Not enough stock. Available: 3, in cart: 0.") {
		t.Fatalf("expected stock warning, got %s", string(b))
	}
}

func TestCartUpdate_CapsAtStock(t *testing.T) {
	app := newCartApp([]product.Product{{ID: 1, Name: "Eggs", Quantity: 4, Price: 4.00}})

	req := httptest.NewRequest("POST", "/add-to-cart/1", strings.NewReader(`{"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	if res, _ := app.Test(req); res.StatusCode != fiber.StatusOK {
		t.Fatalf("seed add failed: %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("POST", "/update-cart/1", strings.NewReader(`{"quantity":9}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "7")
	res2, _ := app.Test(req2)
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"quantity":4`) {
		t.Fatalf("expected quantity capped at 4, got %s", string(b2))
	}
	if !strings.Contains(string(b2), "Not enough stock. Max available: 4.") {
		t.Fatalf("expected cap warning, got %s", string(b2))
	}

	// updating a product that is not in the cart
	req3 := httptest.NewRequest("POST", "/update-cart/2", strings.NewReader(`{"quantity":1}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "7")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating missing line, got %d", res3.StatusCode)
	}
}

func TestCartClear(t *testing.T) {
	app := newCartApp([]product.Product{{ID: 1, Name: "Milk", Quantity: 10, Price: 3.50}})

	req := httptest.NewRequest("POST", "/add-to-cart/1", nil)
	req.Header.Set("X-User-ID", "9")
	if res, _ := app.Test(req); res.StatusCode != fiber.StatusOK {
		t.Fatalf("seed add failed: %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("POST", "/cart/clear", nil)
	req2.Header.Set("X-User-ID", "9")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for clear, got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("GET", "/cart", nil)
	req3.Header.Set("X-User-ID", "9")
	res3, _ := app.Test(req3)
	b3, _ := io.ReadAll(res3.Body)
	if strings.Contains(string(b3), "productId") {
		t.Fatalf("expected empty cart after clear, got %s", string(b3))
	}
}
