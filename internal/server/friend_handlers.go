package server

import (
	"brewlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/request {receiverId}
// @Summary Send friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body object{receiverId=int} true "Receiver"
// @Success 201 {object} object{data=models.Friendship}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /friends/request [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var req struct {
		ReceiverID uint `json:"receiverId"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.ReceiverID == 0 {
		return respondError(c, models.NewValidationError("receiverId is required"))
	}
	f, err := s.friendService.SendRequest(c.UserContext(), currentUser(c), req.ReceiverID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": f})
}

// AcceptFriendRequest handles POST /api/friends/accept {friendshipId}
// @Summary Accept friend request
// @Tags friends
// @Accept json
// @Produce json
// @Param request body object{friendshipId=int} true "Friendship"
// @Success 200 {object} object{data=models.Friendship}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /friends/accept [post]
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	var req struct {
		FriendshipID uint `json:"friendshipId"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.FriendshipID == 0 {
		return respondError(c, models.NewValidationError("friendshipId is required"))
	}
	f, err := s.friendService.AcceptRequest(c.UserContext(), req.FriendshipID, currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": f})
}

// RemoveFriend handles DELETE /api/friends/remove?friendshipId=. It declines,
// cancels or unfriends depending on the row's state.
// @Summary Remove friend
// @Description Declines, cancels or unfriends depending on the friendship state.
// @Tags friends
// @Produce json
// @Param friendshipId query int true "Friendship ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /friends/remove [delete]
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	id, err := queryID(c, "friendshipId")
	if err != nil {
		return respondError(c, err)
	}
	if id == 0 {
		return respondError(c, models.NewValidationError("friendshipId is required"))
	}
	if err := s.friendService.RemoveOrDecline(c.UserContext(), id, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friendship removed"})
}

// ListFriends handles GET /api/friends/list
// @Summary List friendships
// @Tags friends
// @Produce json
// @Success 200 {object} friendship.Views
// @Security BearerAuth
// @Router /friends/list [get]
func (s *Server) ListFriends(c *fiber.Ctx) error {
	views, err := s.friendService.List(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// SearchFriends handles GET /api/friends/search?q=
// @Summary Search profiles
// @Tags friends
// @Produce json
// @Param q query string true "Username or display name"
// @Success 200 {object} object{data=[]service.FriendSearchResult}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /friends/search [get]
func (s *Server) SearchFriends(c *fiber.Ctx) error {
	results, err := s.friendService.Search(c.UserContext(), currentUser(c), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": results})
}
