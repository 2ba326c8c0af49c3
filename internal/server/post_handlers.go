package server

import (
	"brewlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts?feedType&limit&offset&userId&search
// @Summary List feed posts
// @Description Page through the feed. feedType is "all" or "friends"; search matches drink, shop and notes.
// @Tags posts
// @Produce json
// @Param feedType query string false "Feed type" Enums(all, friends)
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Param userId query int false "Only posts by this profile"
// @Param search query string false "Text search"
// @Success 200 {object} object{data=[]models.FeedPost,total=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return respondError(c, err)
	}
	ownerID, err := queryID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.postService.ListFeed(c.UserContext(), service.ListFeedInput{
		ViewerID: currentUser(c),
		FeedType: c.Query("feedType"),
		Limit:    limit,
		Offset:   offset,
		UserID:   ownerID,
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": posts, "total": len(posts)})
}

// CreatePost handles POST /api/posts
// @Summary Log a drink
// @Tags posts
// @Accept json
// @Produce json
// @Param request body service.PostFields true "Post fields"
// @Success 201 {object} object{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var fields service.PostFields
	if err := parseBody(c, &fields); err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     currentUser(c),
		PostFields: fields,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": post})
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{data=models.FeedPost}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.GetPost(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": post})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update post
// @Description Only the author may edit a post.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body service.PostFields true "Post fields"
// @Success 200 {object} object{data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var fields service.PostFields
	if err := parseBody(c, &fields); err != nil {
		return respondError(c, err)
	}
	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:     currentUser(c),
		PostID:     id,
		PostFields: fields,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUser(c),
		PostID: id,
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.postService.Like(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	res, err := s.postService.Unlike(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
