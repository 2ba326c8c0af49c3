package server

import (
	"brewlog/internal/models"
	"brewlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	PostID   uint   `json:"post_id"`
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

type updateCommentRequest struct {
	CommentID uint   `json:"comment_id"`
	Content   string `json:"content"`
}

// ListComments handles GET /api/comments?postId=
// @Summary List comments
// @Description Top-level comments oldest first, each with its replies.
// @Tags comments
// @Produce json
// @Param postId query int true "Post ID"
// @Success 200 {object} object{data=[]models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := queryID(c, "postId")
	if err != nil {
		return respondError(c, err)
	}
	if postID == 0 {
		return respondError(c, models.NewValidationError("postId is required"))
	}
	comments, err := s.commentService.ListComments(c.UserContext(), currentUser(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": comments})
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param request body server.createCommentRequest true "Comment"
// @Success 201 {object} object{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.PostID == 0 {
		return respondError(c, models.NewValidationError("post_id is required"))
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUser(c),
		PostID:   req.PostID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": comment})
}

// UpdateComment handles PUT /api/comments
// @Summary Edit comment
// @Tags comments
// @Accept json
// @Produce json
// @Param request body server.updateCommentRequest true "Comment"
// @Success 200 {object} object{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req updateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.CommentID == 0 {
		return respondError(c, models.NewValidationError("comment_id is required"))
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUser(c),
		CommentID: req.CommentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": comment})
}

// DeleteComment handles DELETE /api/comments?comment_id=
// @Summary Delete comment
// @Description Deleting a top-level comment also deletes its replies.
// @Tags comments
// @Produce json
// @Param comment_id query int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := queryID(c, "comment_id")
	if err != nil {
		return respondError(c, err)
	}
	if id == 0 {
		return respondError(c, models.NewValidationError("comment_id is required"))
	}
	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUser(c),
		CommentID: id,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
