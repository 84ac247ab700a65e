package httpapi

import (
	"context"
	"strings"

	"github.com/anypart/marketplace/internal/server/models"
	"github.com/gofiber/fiber/v3"
)

const featuredLimit = 12

// resolveImageURLs swaps stored object keys for presigned GET URLs in
// place. Entries that are already absolute URLs pass through untouched.
func (s *Server) resolveImageURLs(ctx context.Context, urls []string) error {
	for i, u := range urls {
		if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			continue
		}
		signed, err := s.images.GetPresignedGetURL(ctx, u)
		if err != nil {
			return err
		}
		urls[i] = signed
	}
	return nil
}

func (s *Server) handleListFeatured(c fiber.Ctx) error {
	items, err := s.catalog.ListFeatured(c.Context(), featuredLimit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": items})
}

// handleProductDetails serves the product page. Anonymous and non-granted
// buyers get the view with seller contact redacted.
func (s *Server) handleProductDetails(c fiber.Ctx) error {
	buyerID := ""
	if session := sessionFromCtx(c); session != nil && session.Kind == models.PrincipalBuyer {
		buyerID = session.PrincipalID
	}
	view, err := s.catalog.GetProductDetails(c.Context(), c.Params("id"), buyerID)
	if err != nil {
		return s.writeError(c, err)
	}
	if err := s.resolveImageURLs(c.Context(), view.ImageURLs); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "product": view})
}

func (s *Server) handleListUnlocked(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	items, err := s.catalog.ListUnlocked(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": items})
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Year        int      `json:"year"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	ImageURLs   []string `json:"image_urls"`
}

func (s *Server) handleSellerProducts(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	items, err := s.catalog.ListSellerProducts(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "products": items})
}

func (s *Server) handleCreateProduct(c fiber.Ctx) error {
	var req productRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	session := sessionFromCtx(c)
	product, err := s.catalog.CreateProduct(c.Context(), &models.Product{
		SellerID:    session.PrincipalID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Condition:   req.Condition,
		Tags:        req.Tags,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": product})
}

func (s *Server) handleUpdateProduct(c fiber.Ctx) error {
	var req productRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	session := sessionFromCtx(c)
	err := s.catalog.UpdateProduct(c.Context(), &models.Product{
		ID:          c.Params("id"),
		SellerID:    session.PrincipalID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Condition:   req.Condition,
		Tags:        req.Tags,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleImagePresign(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	key, url, err := s.images.GetPresignedPutURL(c.Context(), session.PrincipalID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "key": key, "upload_url": url})
}
