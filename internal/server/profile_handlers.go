package server

import (
	"brewlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProfile handles POST /api/profiles. The new profile takes the
// caller's account ID.
// @Summary Create profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body service.CreateProfileInput true "Profile"
// @Success 201 {object} object{data=models.Profile}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles [post]
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var req service.CreateProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := s.profileService.CreateProfile(c.UserContext(), currentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": profile})
}

// GetMyProfile handles GET /api/profiles/me
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Success 200 {object} object{data=models.Profile}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": profile})
}

// UpdateMyProfile handles PUT /api/profiles/me
// @Summary Update own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Settings"
// @Success 200 {object} object{data=models.Profile}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	profile, err := s.profileService.UpdateSettings(c.UserContext(), currentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": profile})
}

// GetProfile handles GET /api/profiles/:username
// @Summary Get profile by username
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{data=service.ProfileView}
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	view, err := s.profileService.GetByUsername(c.UserContext(), currentUser(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": view})
}

// GetStats handles GET /api/stats?userId=
// @Summary Drink statistics
// @Description Defaults to the caller when userId is omitted.
// @Tags profiles
// @Produce json
// @Param userId query int false "Profile ID"
// @Success 200 {object} object{data=models.UserStats}
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (s *Server) GetStats(c *fiber.Ctx) error {
	ownerID, err := queryID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	stats, err := s.statsService.GetStats(c.UserContext(), currentUser(c), ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}
