package httpapi

import (
	"github.com/gofiber/fiber/v3"
)

func (s *Server) handleStartConversation(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	conv, err := s.chats.StartConversation(c.Context(), session.PrincipalID, c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "conversation": conv})
}

func (s *Server) handleListConversations(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	convs, err := s.chats.ListConversations(c.Context(), session)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "conversations": convs})
}

func (s *Server) handleListMessages(c fiber.Ctx) error {
	session := sessionFromCtx(c)
	msgs, err := s.chats.ListMessages(c.Context(), session, c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "messages": msgs})
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleSendMessage(c fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Body == "" {
		return badRequest(c, "message body is required")
	}
	session := sessionFromCtx(c)
	msg, err := s.chats.SendMessage(c.Context(), session, c.Params("id"), req.Body)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}
