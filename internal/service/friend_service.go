package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"brewlog/internal/cache"
	"brewlog/internal/friendship"
	"brewlog/internal/models"
	"brewlog/internal/observability"
	"brewlog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// minSearchLen is the shortest accepted friend search query.
const minSearchLen = 2

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo    repository.FriendRepository
	profileRepo   repository.ProfileRepository
	notifications *NotificationService
	cache         *cache.Cache
}

// FriendSearchResult is a profile found by search, annotated with how the
// caller relates to it.
type FriendSearchResult struct {
	User         models.ProfileSummary     `json:"user"`
	Status       friendship.RelationStatus `json:"status"`
	FriendshipID uint                      `json:"friendship_id,omitempty"`
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, profileRepo repository.ProfileRepository, notifications *NotificationService, c *cache.Cache) *FriendService {
	return &FriendService{
		friendRepo:    friendRepo,
		profileRepo:   profileRepo,
		notifications: notifications,
		cache:         c,
	}
}

// SendRequest opens a pending friendship from initiatorID to receiverID.
// The insert is conditional on the pair being unrelated, so concurrent
// requests between the same two users create one row.
func (s *FriendService) SendRequest(ctx context.Context, initiatorID, receiverID uint) (*models.Friendship, error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.SendRequest",
		attribute.Int64("friend.initiator_id", int64(initiatorID)),
		attribute.Int64("friend.receiver_id", int64(receiverID)))
	defer span.End()

	f, err := s.sendRequest(ctx, initiatorID, receiverID)
	if err != nil {
		span.SetError(err)
		observability.FriendRequests.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}
	observability.FriendRequests.WithLabelValues("created").Inc()
	return f, nil
}

func (s *FriendService) sendRequest(ctx context.Context, initiatorID, receiverID uint) (*models.Friendship, error) {
	if err := friendship.ValidateSend(initiatorID, receiverID, nil); err != nil {
		return nil, err
	}
	if _, err := s.profileRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	existing, err := s.friendRepo.GetBetween(ctx, initiatorID, receiverID)
	if err != nil {
		return nil, err
	}
	if err := friendship.ValidateSend(initiatorID, receiverID, existing); err != nil {
		return nil, err
	}

	f := &models.Friendship{
		InitiatorID: initiatorID,
		ReceiverID:  receiverID,
		Status:      models.FriendshipStatusPending,
	}
	created, err := s.friendRepo.CreateIfAbsent(ctx, f)
	if err != nil {
		return nil, err
	}
	if !created {
		// Another request for this pair landed between the read and the insert.
		winner, err := s.friendRepo.GetBetween(ctx, initiatorID, receiverID)
		if err != nil {
			return nil, err
		}
		if err := friendship.ValidateSend(initiatorID, receiverID, winner); err != nil {
			return nil, err
		}
		return nil, models.NewConflictError("A friendship with this user already exists")
	}

	s.notifications.Notify(ctx, &models.Notification{
		UserID:       receiverID,
		Type:         models.NotificationFriendRequest,
		Title:        "New friend request",
		Message:      "sent you a friend request",
		ActorID:      uintPtr(initiatorID),
		FriendshipID: uintPtr(f.ID),
	})

	return s.friendRepo.GetByID(ctx, f.ID)
}

// AcceptRequest lets the receiver of a pending request accept it.
func (s *FriendService) AcceptRequest(ctx context.Context, friendshipID, accepterID uint) (*models.Friendship, error) {
	f, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if err := friendship.ValidateAccept(f, accepterID); err != nil {
		return nil, err
	}

	ok, err := s.friendRepo.AcceptPending(ctx, friendshipID, accepterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("Friend request is not pending")
	}
	s.cache.InvalidateFriendships(ctx, f.InitiatorID, f.ReceiverID)

	if f.InitiatorID != accepterID {
		s.notifications.Notify(ctx, &models.Notification{
			UserID:       f.InitiatorID,
			Type:         models.NotificationFriendAccepted,
			Title:        "Friend request accepted",
			Message:      "accepted your friend request",
			ActorID:      uintPtr(accepterID),
			FriendshipID: uintPtr(f.ID),
		})
	}

	return s.friendRepo.GetByID(ctx, friendshipID)
}

// RemoveOrDecline deletes a friendship the requester is party to. Declining
// a pending request and unfriending are the same operation.
func (s *FriendService) RemoveOrDecline(ctx context.Context, friendshipID, requesterID uint) error {
	f, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if err := friendship.ValidateRemove(f, requesterID); err != nil {
		return err
	}
	if err := s.friendRepo.Delete(ctx, friendshipID); err != nil {
		return err
	}
	s.cache.InvalidateFriendships(ctx, f.InitiatorID, f.ReceiverID)
	return nil
}

// List returns the caller's incoming, outgoing and accepted friendships.
func (s *FriendService) List(ctx context.Context, userID uint) (friendship.Views, error) {
	rows, err := s.friendRepo.ListForUser(ctx, userID)
	if err != nil {
		return friendship.Views{}, err
	}
	return friendship.Partition(userID, rows), nil
}

// Search finds profiles by username or display name, excluding the caller.
func (s *FriendService) Search(ctx context.Context, userID uint, query string) ([]FriendSearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLen {
		return nil, models.NewValidationError(fmt.Sprintf("Search query must be at least %d characters", minSearchLen))
	}

	profiles, err := s.profileRepo.Search(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	rows, err := s.friendRepo.GetBetweenMany(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byOther := make(map[uint]*models.Friendship, len(rows))
	for i := range rows {
		byOther[rows[i].OtherParty(userID)] = &rows[i]
	}

	results := make([]FriendSearchResult, 0, len(profiles))
	for _, p := range profiles {
		f := byOther[p.ID]
		r := FriendSearchResult{
			User:   p.Summary(),
			Status: friendship.StatusBetween(userID, f),
		}
		if f != nil {
			r.FriendshipID = f.ID
		}
		results = append(results, r)
	}
	return results, nil
}

// RelationTo reports how userID relates to otherID.
func (s *FriendService) RelationTo(ctx context.Context, userID, otherID uint) (friendship.RelationStatus, *models.Friendship, error) {
	if userID == 0 || userID == otherID {
		return friendship.StatusNone, nil, nil
	}
	f, err := s.friendRepo.GetBetween(ctx, userID, otherID)
	if err != nil {
		return "", nil, err
	}
	return friendship.StatusBetween(userID, f), f, nil
}

// FriendIDs returns the accepted-friend ID set of userID.
func (s *FriendService) FriendIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	return friendIDSet(ctx, s.cache, s.friendRepo, userID)
}

func outcomeOf(err error) string {
	switch {
	case models.IsCode(err, models.CodeValidation):
		return "invalid"
	case models.IsCode(err, models.CodeConflict):
		return "conflict"
	case models.IsCode(err, models.CodeNotFound):
		return "not_found"
	}
	return "error"
}
