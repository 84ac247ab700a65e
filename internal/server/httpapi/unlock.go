package httpapi

import (
	"github.com/gofiber/fiber/v3"
)

// handleUnlock spends one credit to reveal the product's seller contact.
// The response carries the refreshed product view so the client sees the
// revealed contact and the new balance in one round trip.
func (s *Server) handleUnlock(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	productID := c.Params("id")

	result, err := s.unlock.Unlock(c.Context(), session.PrincipalID, productID)
	if err != nil {
		return s.writeError(c, err)
	}

	view, err := s.catalog.GetProductDetails(c.Context(), productID, session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.resolveImageURLs(c.Context(), view.ImageURLs); err != nil {
		return s.writeError(c, err)
	}
	credits, err := s.ledger.AvailableCredits(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"already_unlocked": result.AlreadyUnlocked,
		"product":          view,
		"credits":          credits,
	})
}

func (s *Server) handleCredits(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	credits, err := s.ledger.AvailableCredits(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "credits": credits})
}

// handleGrants serves the buyer's unlock history.
func (s *Server) handleGrants(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	grants, err := s.ledger.ListGrants(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "grants": grants})
}
