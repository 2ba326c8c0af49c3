// Package friendship holds the rules for friendship rows: which transitions
// are allowed for whom, and how a user's rows split into request and friend
// lists. It does no I/O.
package friendship

import (
	"time"

	"brewlog/internal/models"
)

// RelationStatus describes a friendship from one party's point of view.
type RelationStatus string

const (
	StatusNone            RelationStatus = "none"
	StatusPendingSent     RelationStatus = "pending_sent"
	StatusPendingReceived RelationStatus = "pending_received"
	StatusFriends         RelationStatus = "friends"
	StatusBlocked         RelationStatus = "blocked"
)

// Entry is one friendship as seen by the caller: always the other party,
// never the caller.
type Entry struct {
	FriendshipID uint                    `json:"friendship_id"`
	Status       models.FriendshipStatus `json:"status"`
	User         models.ProfileSummary   `json:"user"`
	CreatedAt    time.Time               `json:"created_at"`
}

// Views splits a user's friendship rows into disjoint lists.
type Views struct {
	Incoming []Entry `json:"incoming"`
	Outgoing []Entry `json:"outgoing"`
	Accepted []Entry `json:"accepted"`
}

// ValidateSend checks whether initiatorID may open a request to receiverID
// given the row that already relates them, if any.
func ValidateSend(initiatorID, receiverID uint, existing *models.Friendship) error {
	if initiatorID == receiverID {
		return models.NewValidationError("Cannot send friend request to yourself")
	}
	if existing == nil {
		return nil
	}
	switch existing.Status {
	case models.FriendshipStatusAccepted:
		return models.NewConflictError("You are already friends")
	case models.FriendshipStatusPending:
		if existing.InitiatorID == initiatorID {
			return models.NewConflictError("Friend request already sent")
		}
		return models.NewConflictError("This user has already sent you a friend request")
	case models.FriendshipStatusBlocked:
		return models.NewConflictError("Unable to send a friend request to this user")
	default:
		return models.NewConflictError("A friendship with this user already exists")
	}
}

// ValidateAccept checks that accepterID is the receiver of a pending row.
func ValidateAccept(f *models.Friendship, accepterID uint) error {
	if f.ReceiverID != accepterID {
		return models.NewForbiddenError("You can only accept friend requests sent to you")
	}
	if f.Status != models.FriendshipStatusPending {
		return models.NewConflictError("Friend request is not pending")
	}
	return nil
}

// ValidateRemove checks that requesterID is a party to the row. Declining a
// request and unfriending are the same operation.
func ValidateRemove(f *models.Friendship, requesterID uint) error {
	if !f.Involves(requesterID) {
		return models.NewForbiddenError("You are not part of this friendship")
	}
	return nil
}

// Partition sorts rows touching userID into incoming pending, outgoing
// pending and accepted. Rows that do not involve userID, and blocked rows,
// are skipped. Initiator and Receiver must be loaded on each row.
func Partition(userID uint, rows []models.Friendship) Views {
	views := Views{
		Incoming: []Entry{},
		Outgoing: []Entry{},
		Accepted: []Entry{},
	}
	for i := range rows {
		f := &rows[i]
		if !f.Involves(userID) {
			continue
		}
		switch {
		case f.Status == models.FriendshipStatusPending && f.ReceiverID == userID:
			views.Incoming = append(views.Incoming, entryFor(userID, f))
		case f.Status == models.FriendshipStatusPending && f.InitiatorID == userID:
			views.Outgoing = append(views.Outgoing, entryFor(userID, f))
		case f.Status == models.FriendshipStatusAccepted:
			views.Accepted = append(views.Accepted, entryFor(userID, f))
		}
	}
	return views
}

// FriendIDs returns the accepted-friend ID set of userID.
func FriendIDs(userID uint, rows []models.Friendship) map[uint]struct{} {
	ids := make(map[uint]struct{})
	for i := range rows {
		f := &rows[i]
		if f.Status != models.FriendshipStatusAccepted || !f.Involves(userID) {
			continue
		}
		ids[f.OtherParty(userID)] = struct{}{}
	}
	return ids
}

// StatusBetween reports how userID relates to the other party of f. A nil
// row means no relation.
func StatusBetween(userID uint, f *models.Friendship) RelationStatus {
	if f == nil {
		return StatusNone
	}
	switch f.Status {
	case models.FriendshipStatusAccepted:
		return StatusFriends
	case models.FriendshipStatusPending:
		if f.InitiatorID == userID {
			return StatusPendingSent
		}
		return StatusPendingReceived
	case models.FriendshipStatusBlocked:
		return StatusBlocked
	}
	return StatusNone
}

func entryFor(userID uint, f *models.Friendship) Entry {
	other := f.Initiator
	if f.InitiatorID == userID {
		other = f.Receiver
	}
	summary := other.Summary()
	// Fall back to the bare ID when the profile was not loaded.
	if summary.ID == 0 {
		summary.ID = f.OtherParty(userID)
	}
	return Entry{
		FriendshipID: f.ID,
		Status:       f.Status,
		User:         summary,
		CreatedAt:    f.CreatedAt,
	}
}
