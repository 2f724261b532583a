package checkout

import (
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/marcusyeo/supermarket-backend/internal/order"
	"github.com/marcusyeo/supermarket-backend/internal/payment"
	"github.com/marcusyeo/supermarket-backend/internal/product"
	"github.com/marcusyeo/supermarket-backend/internal/receipt"
	"github.com/marcusyeo/supermarket-backend/internal/user"
)

// MailSender sends the receipt email; failures are reported to the caller
// but never undo the order.
type MailSender interface {
	SendReceipt(toEmail string, orderID int, pdfPath string) error
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Handler exposes the checkout flow over HTTP: the checkout summary, the
// provider-specific create/capture endpoints, the converged confirm
// endpoints, and receipt emailing.
type Handler struct {
	service *Service
	guard   *Guard

	stripe payment.Provider
	paypal payment.Provider
	hitpay payment.Provider

	orders   *order.Service
	mail     MailSender
	receipts ReceiptGenerator
	users    user.ServiceInterface

	paypalClientID string
	uploadsDir     string
}

func NewHandler(service *Service, guard *Guard, stripe, paypalProvider, hitpay payment.Provider,
	orders *order.Service, mail MailSender, receipts ReceiptGenerator, users user.ServiceInterface,
	paypalClientID, uploadsDir string) *Handler {
	return &Handler{
		service:        service,
		guard:          guard,
		stripe:         stripe,
		paypal:         paypalProvider,
		hitpay:         hitpay,
		orders:         orders,
		mail:           mail,
		receipts:       receipts,
		users:          users,
		paypalClientID: paypalClientID,
		uploadsDir:     uploadsDir,
	}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/checkout", h.showCheckout)
	app.Post("/checkout/confirm", h.confirmOrder)
	app.Post("/checkout/create-stripe-session", h.createStripeSession)
	app.Get("/checkout/success", h.stripeSuccess)
	app.Post("/api/paypal/create-order", h.paypalCreateOrder)
	app.Post("/api/paypal/capture-order", h.paypalCaptureOrder)
	app.Get("/paypal/success", h.paypalSuccess)
	app.Post("/api/hitpay/create-payment", h.hitpayCreatePayment)
	app.Get("/hitpay/return", h.hitpayReturn)
	app.Post("/email-receipt/:orderId", h.emailReceipt)
}

func (h *Handler) showCheckout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, total, err := h.service.CartTotal(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{
		"cart":           items,
		"total":          total,
		"paypalClientId": h.paypalClientID,
	})
}

// confirmOrder handles the Card / Bank Transfer variants: payment happened
// out of band, so this converges straight onto the confirm sequence.
func (h *Handler) confirmOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	method := Method{Kind: MethodCard}
	if strings.EqualFold(c.FormValue("paymentMethod"), "BankTransfer") {
		method = BankTransferMethod("")
	}
	if file, err := c.FormFile("bankScreenshot"); err == nil {
		dest := h.uploadsDir + "/" + file.Filename
		if err := c.SaveFile(file, dest); err != nil {
			logrus.WithError(err).Warn("bank screenshot save failed")
		} else {
			method = BankTransferMethod("/uploads/" + file.Filename)
		}
	}

	return h.respondConfirm(c, userID, method)
}

func (h *Handler) createStripeSession(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, total, err := h.service.CartTotal(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart is empty"})
	}

	sessionID, url, err := h.stripe.CreateOrder(c.Context(), total, h.service.currency)
	if err != nil {
		logrus.WithError(err).Error("stripe session create failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Payment setup failed"})
	}
	return c.JSON(fiber.Map{"id": sessionID, "url": url})
}

// stripeSuccess verifies the checkout session is paid, then confirms the
// order. A reload of the success URL finds the session already confirmed and
// does nothing.
func (h *Handler) stripeSuccess(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing session_id"})
	}
	if h.guard.Confirmed(userID, sessionID) {
		return c.JSON(fiber.Map{"message": "Order already confirmed"})
	}

	captured, err := h.stripe.CaptureOrder(c.Context(), sessionID)
	if err != nil {
		logrus.WithError(err).Error("stripe verification failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}
	if captured.Status != payment.StripePaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Payment not completed"})
	}

	if err := h.respondConfirm(c, userID, CardMethod(sessionID, captured.ChargeID)); err != nil {
		return err
	}
	h.guard.MarkConfirmed(userID, sessionID)
	return nil
}

func (h *Handler) paypalCreateOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, total, err := h.service.CartTotal(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart is empty"})
	}
	if total <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart total invalid"})
	}

	orderID, _, err := h.paypal.CreateOrder(c.Context(), total, h.service.currency)
	if err != nil {
		logrus.WithError(err).Error("paypal create order failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create PayPal order"})
	}
	return c.JSON(fiber.Map{"id": orderID})
}

// paypalCaptureOrder captures exactly once and remembers the captured order
// id; the success endpoint consumes the marker instead of capturing again.
func (h *Handler) paypalCaptureOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var payload struct {
		OrderID string `json:"orderID"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing orderID"})
	}

	captured, err := h.paypal.CaptureOrder(c.Context(), payload.OrderID)
	if err != nil {
		logrus.WithError(err).Error("paypal capture failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to capture PayPal order"})
	}
	if captured.Status != payment.PayPalCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Payment not completed"})
	}

	h.guard.Remember(userID, "paypal", Marker{ExternalID: payload.OrderID, ChargeID: captured.ChargeID})
	return c.JSON(fiber.Map{"redirectUrl": "/paypal/success?orderID=" + payload.OrderID})
}

func (h *Handler) paypalSuccess(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orderID := c.Query("orderID")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing orderID"})
	}

	marker, ok := h.guard.Consume(userID, "paypal")
	if !ok || marker.ExternalID != orderID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No captured PayPal order for this session"})
	}

	return h.respondConfirm(c, userID, PayPalMethod(orderID, marker.ChargeID))
}

func (h *Handler) hitpayCreatePayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	items, total, err := h.service.CartTotal(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart is empty"})
	}

	requestID, url, err := h.hitpay.CreateOrder(c.Context(), total, h.service.currency)
	if err != nil {
		logrus.WithError(err).Error("hitpay create payment failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create PayNow payment"})
	}

	h.guard.Remember(userID, "hitpay", Marker{ExternalID: requestID})
	return c.JSON(fiber.Map{"id": requestID, "url": url})
}

// hitpayReturn handles the synchronous redirect back from HitPay. The
// provider may still report pending here, so the capture call polls a few
// times before giving up; the webhook covers anything slower.
func (h *Handler) hitpayReturn(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	requestID := c.Query("reference")
	marker, hasMarker := h.guard.Consume(userID, "hitpay")
	if requestID == "" && hasMarker {
		requestID = marker.ExternalID
	}
	if requestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing payment reference"})
	}
	if h.guard.Confirmed(userID, requestID) {
		return c.JSON(fiber.Map{"message": "Order already confirmed"})
	}

	captured, err := h.hitpay.CaptureOrder(c.Context(), requestID)
	if err != nil {
		if err == payment.ErrPaymentPending {
			// put the marker back so a later reload can retry
			h.guard.Remember(userID, "hitpay", Marker{ExternalID: requestID})
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Payment still pending, try again shortly"})
		}
		logrus.WithError(err).Error("hitpay status poll failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.respondConfirm(c, userID, PayNowMethod(requestID, captured.ChargeID)); err != nil {
		return err
	}
	h.guard.MarkConfirmed(userID, requestID)
	return nil
}

func (h *Handler) emailReceipt(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("orderId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	var payload struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	toEmail := strings.TrimSpace(payload.Email)
	if !emailPattern.MatchString(toEmail) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide a valid email address."})
	}

	ord, err := h.orders.GetByID(orderID)
	if err != nil {
		if err == order.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found."})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	pdfPath := h.receipts.Path(orderID)
	if _, err := os.Stat(pdfPath); err != nil {
		username := "Guest"
		if u, uerr := h.users.GetByID(ord.UserID); uerr == nil {
			username = u.Username
		}
		if _, err := h.receipts.Generate(ord, username, toEmail); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Receipt generation failed"})
		}
	}

	if err := h.mail.SendReceipt(toEmail, orderID, pdfPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{
		"emailSent":           toEmail,
		"receiptDownloadPath": receipt.PublicPath(orderID),
	})
}

// respondConfirm maps ConfirmOrder outcomes onto HTTP responses.
func (h *Handler) respondConfirm(c *fiber.Ctx, userID int, method Method) error {
	res, err := h.service.ConfirmOrder(userID, method)
	if err != nil {
		switch {
		case err == ErrEmptyCart:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cart is empty"})
		case errors.Is(err, product.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Order failed: " + err.Error()})
		case errors.Is(err, ErrReceipt):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Receipt generation failed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(res)
}
