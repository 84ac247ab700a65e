package httpapi

import (
	"strconv"

	"github.com/anypart/marketplace/internal/server/services"
	"github.com/gofiber/fiber/v3"
)

func (s *Server) handleListPackages(c fiber.Ctx) error {
	pkgs, err := s.payments.ListPackages(c.Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "packages": pkgs})
}

func (s *Server) handleListPayments(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	items, err := s.payments.ListPayments(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "payments": items})
}

func (s *Server) handleCheckout(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	req, err := s.payments.StartCheckout(c.Context(), session.PrincipalID, c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "checkout": req})
}

// handlePaymentNotify receives the gateway's server-to-server callback.
// The gateway posts form fields, not JSON. The endpoint is unauthenticated;
// the md5sig check is the trust boundary.
func (s *Server) handlePaymentNotify(c fiber.Ctx) error {
	statusCode, err := strconv.Atoi(c.FormValue("status_code"))
	if err != nil {
		return badRequest(c, "invalid status_code")
	}
	params := services.NotifyParams{
		MerchantID:      c.FormValue("merchant_id"),
		OrderRef:        c.FormValue("order_id"),
		PayhereAmount:   c.FormValue("payhere_amount"),
		PayhereCurrency: c.FormValue("payhere_currency"),
		StatusCode:      statusCode,
		MD5Sig:          c.FormValue("md5sig"),
		Method:          c.FormValue("method"),
	}
	if err := s.payments.HandleNotify(c.Context(), params); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
