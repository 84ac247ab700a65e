package httpapi

import (
	"github.com/gofiber/fiber/v3"
)

func (s *Server) handleAdminLogin(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	token, err := s.admin.Login(c.Context(), req.UserName, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "access_token": token})
}

type adminMintRequest struct {
	BuyerID      string `json:"buyer_id"`
	Count        int    `json:"count"`
	ValidityDays int    `json:"validity_days"`
	Note         string `json:"note"`
}

// handleAdminMint tops up a buyer's ledger outside the purchase flow.
func (s *Server) handleAdminMint(c fiber.Ctx) error {
	var req adminMintRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.BuyerID == "" || req.Count <= 0 {
		return badRequest(c, "buyer_id and a positive count are required")
	}
	ids, err := s.ledger.MintTokens(c.Context(), req.BuyerID, req.Count, req.ValidityDays, req.Note)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "token_ids": ids})
}
