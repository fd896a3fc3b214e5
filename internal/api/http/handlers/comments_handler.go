package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// CommentsHandler manages comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// ListComments GET /tickets/:ticketId/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.service.ListByTicket(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(comments))
}

// CreateComment POST /tickets/:ticketId/comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.CreateComment(c.UserContext(), principal.UserID, c.Params("ticketId"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

// DeleteComment DELETE /comments/:commentId.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.UserContext(), principal.UserID, c.Params("commentId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Comment deleted successfully"})
}
