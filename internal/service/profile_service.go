package service

import (
	"context"
	"strings"

	"brewlog/internal/friendship"
	"brewlog/internal/models"
	"brewlog/internal/repository"
	"brewlog/internal/validation"
)

// ProfileService manages the caller's own profile and public profile views.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	friends     *FriendService
}

// CreateProfileInput is the signup-completion payload.
type CreateProfileInput struct {
	Username     string `json:"username" validate:"required,username"`
	DisplayName  string `json:"display_name" validate:"max=60"`
	Bio          string `json:"bio" validate:"max=280"`
	AvatarURL    string `json:"avatar_url" validate:"omitempty,httpurl"`
	PrivacyLevel string `json:"privacy_level" validate:"omitempty,privacy"`
}

// UpdateProfileInput changes settings. Nil fields are left unchanged.
type UpdateProfileInput struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,max=60"`
	Bio          *string `json:"bio" validate:"omitempty,max=280"`
	AvatarURL    *string `json:"avatar_url" validate:"omitempty,httpurl"`
	PrivacyLevel *string `json:"privacy_level" validate:"omitempty,privacy"`
}

// ProfileView is another profile as seen by the caller.
type ProfileView struct {
	models.ProfileSummary
	Bio          string                    `json:"bio"`
	PrivacyLevel models.PrivacyLevel       `json:"privacy_level"`
	Relation     friendship.RelationStatus `json:"relation"`
	FriendshipID uint                      `json:"friendship_id,omitempty"`
}

// NewProfileService returns a new ProfileService.
func NewProfileService(profileRepo repository.ProfileRepository, friends *FriendService) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, friends: friends}
}

// CreateProfile creates the caller's profile. The profile ID is the caller's
// account ID, so each account has at most one.
func (s *ProfileService) CreateProfile(ctx context.Context, userID uint, in CreateProfileInput) (*models.Profile, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.DisplayName = validation.SanitizeText(in.DisplayName)
	in.Bio = validation.SanitizeText(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:           userID,
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		Bio:          in.Bio,
		AvatarURL:    in.AvatarURL,
		PrivacyLevel: models.PrivacyPublic,
	}
	if in.PrivacyLevel != "" {
		profile.PrivacyLevel = models.PrivacyLevel(in.PrivacyLevel)
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Username
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

// UpdateSettings applies the non-nil fields of in to the caller's profile.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID uint, in UpdateProfileInput) (*models.Profile, error) {
	if in.DisplayName != nil {
		v := validation.SanitizeText(*in.DisplayName)
		in.DisplayName = &v
	}
	if in.Bio != nil {
		v := validation.SanitizeText(*in.Bio)
		in.Bio = &v
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		profile.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		profile.AvatarURL = *in.AvatarURL
	}
	if in.PrivacyLevel != nil {
		profile.PrivacyLevel = models.PrivacyLevel(*in.PrivacyLevel)
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetByUsername returns a profile's public fields and how the viewer
// relates to it.
func (s *ProfileService) GetByUsername(ctx context.Context, viewerID uint, username string) (*ProfileView, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	status, f, err := s.friends.RelationTo(ctx, viewerID, profile.ID)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{
		ProfileSummary: profile.Summary(),
		Bio:            profile.Bio,
		PrivacyLevel:   profile.PrivacyLevel,
		Relation:       status,
	}
	if f != nil {
		view.FriendshipID = f.ID
	}
	return view, nil
}
