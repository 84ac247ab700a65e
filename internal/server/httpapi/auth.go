package httpapi

import (
	"context"
	"time"

	"github.com/anypart/marketplace/internal/server/models"
	"github.com/gofiber/fiber/v3"
)

type registerBuyerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UserName string `json:"username"`
	Password string `json:"password"`
	Tel      string `json:"tel"`
	City     string `json:"city"`
	District string `json:"district"`
	Address  string `json:"address"`
}

type registerSellerRequest struct {
	Name     string `json:"name"`
	UserName string `json:"username"`
	Password string `json:"password"`
	Tel1     string `json:"tel1"`
	Tel2     string `json:"tel2"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleBuyerRegister(c fiber.Ctx) error {
	var req registerBuyerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserName == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}
	buyer, err := s.sessions.RegisterBuyer(c.Context(), &models.Buyer{
		FullName: req.FullName,
		Email:    req.Email,
		UserName: req.UserName,
		Tel:      req.Tel,
		City:     req.City,
		District: req.District,
		Address:  req.Address,
	}, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      buyer.ID,
	})
}

func (s *Server) handleSellerRegister(c fiber.Ctx) error {
	var req registerSellerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserName == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}
	seller, err := s.sessions.RegisterSeller(c.Context(), &models.Seller{
		Name:     req.Name,
		UserName: req.UserName,
		Tel1:     req.Tel1,
		Tel2:     req.Tel2,
		Address:  req.Address,
		City:     req.City,
	}, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      seller.ID,
	})
}

func (s *Server) handleBuyerLogin(c fiber.Ctx) error {
	return s.handleLogin(c, s.sessions.LoginBuyer)
}

func (s *Server) handleSellerLogin(c fiber.Ctx) error {
	return s.handleLogin(c, s.sessions.LoginSeller)
}

func (s *Server) handleLogin(c fiber.Ctx, login func(ctx context.Context, userName, password string) (*models.Session, error)) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	session, err := login(c.Context(), req.UserName, req.Password)
	if err != nil {
		return s.writeError(c, err)
	}
	s.setSessionCookie(c, session)
	return c.JSON(fiber.Map{
		"success": true,
		"kind":    session.Kind,
	})
}

func (s *Server) handleLogout(c fiber.Ctx) error {
	token := c.Cookies(SessionCookie)
	if token != "" {
		if err := s.sessions.Logout(c.Context(), token); err != nil {
			return s.writeError(c, err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) setSessionCookie(c fiber.Ctx, session *models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
