package friendship

import (
	"testing"

	"brewlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(id uint, username string) models.Profile {
	return models.Profile{ID: id, Username: username, PrivacyLevel: models.PrivacyPublic}
}

func row(id, initiator, receiver uint, status models.FriendshipStatus) models.Friendship {
	return models.Friendship{
		ID:          id,
		InitiatorID: initiator,
		ReceiverID:  receiver,
		Status:      status,
		Initiator:   profile(initiator, "u"+string(rune('a'+initiator))),
		Receiver:    profile(receiver, "u"+string(rune('a'+receiver))),
	}
}

func TestValidateSend(t *testing.T) {
	pendingFromMe := row(1, 1, 2, models.FriendshipStatusPending)
	pendingToMe := row(1, 2, 1, models.FriendshipStatusPending)
	accepted := row(1, 2, 1, models.FriendshipStatusAccepted)
	blocked := row(1, 2, 1, models.FriendshipStatusBlocked)

	tests := []struct {
		name     string
		existing *models.Friendship
		from, to uint
		code     string
		message  string
	}{
		{"self", nil, 1, 1, models.CodeValidation, "Cannot send friend request to yourself"},
		{"fresh", nil, 1, 2, "", ""},
		{"already friends", &accepted, 1, 2, models.CodeConflict, "You are already friends"},
		{"already sent", &pendingFromMe, 1, 2, models.CodeConflict, "Friend request already sent"},
		{"reverse pending", &pendingToMe, 1, 2, models.CodeConflict, "This user has already sent you a friend request"},
		{"blocked", &blocked, 1, 2, models.CodeConflict, "Unable to send a friend request to this user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSend(tt.from, tt.to, tt.existing)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.IsCode(err, tt.code))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidateAccept_OnlyReceiver(t *testing.T) {
	f := row(5, 10, 11, models.FriendshipStatusPending)

	assert.True(t, models.IsCode(ValidateAccept(&f, 10), models.CodeForbidden), "initiator cannot accept")
	assert.True(t, models.IsCode(ValidateAccept(&f, 12), models.CodeForbidden), "stranger cannot accept")
	assert.NoError(t, ValidateAccept(&f, 11))

	f.Status = models.FriendshipStatusAccepted
	assert.True(t, models.IsCode(ValidateAccept(&f, 11), models.CodeConflict))
}

func TestValidateRemove_EitherParty(t *testing.T) {
	f := row(5, 10, 11, models.FriendshipStatusAccepted)
	assert.NoError(t, ValidateRemove(&f, 10))
	assert.NoError(t, ValidateRemove(&f, 11))
	assert.True(t, models.IsCode(ValidateRemove(&f, 12), models.CodeForbidden))
}

func TestPartition(t *testing.T) {
	rows := []models.Friendship{
		row(1, 2, 1, models.FriendshipStatusPending),  // incoming from 2
		row(2, 1, 3, models.FriendshipStatusPending),  // outgoing to 3
		row(3, 4, 1, models.FriendshipStatusAccepted), // friend 4
		row(4, 1, 5, models.FriendshipStatusAccepted), // friend 5
		row(5, 1, 6, models.FriendshipStatusBlocked),  // skipped
		row(6, 7, 8, models.FriendshipStatusAccepted), // unrelated
	}

	views := Partition(1, rows)

	require.Len(t, views.Incoming, 1)
	assert.Equal(t, uint(2), views.Incoming[0].User.ID)
	require.Len(t, views.Outgoing, 1)
	assert.Equal(t, uint(3), views.Outgoing[0].User.ID)
	require.Len(t, views.Accepted, 2)
	assert.Equal(t, uint(4), views.Accepted[0].User.ID)
	assert.Equal(t, uint(5), views.Accepted[1].User.ID)

	for _, list := range [][]Entry{views.Incoming, views.Outgoing, views.Accepted} {
		for _, e := range list {
			assert.NotEqual(t, uint(1), e.User.ID, "caller must never appear as the other party")
		}
	}
}

func TestPartition_EmptyListsNotNil(t *testing.T) {
	views := Partition(1, nil)
	assert.NotNil(t, views.Incoming)
	assert.NotNil(t, views.Outgoing)
	assert.NotNil(t, views.Accepted)
}

func TestFriendIDs(t *testing.T) {
	rows := []models.Friendship{
		row(1, 2, 1, models.FriendshipStatusPending),
		row(2, 4, 1, models.FriendshipStatusAccepted),
		row(3, 1, 5, models.FriendshipStatusAccepted),
	}
	ids := FriendIDs(1, rows)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, uint(4))
	assert.Contains(t, ids, uint(5))
	assert.NotContains(t, ids, uint(2))
}

func TestStatusBetween(t *testing.T) {
	sent := row(1, 1, 2, models.FriendshipStatusPending)
	accepted := row(1, 1, 2, models.FriendshipStatusAccepted)
	blocked := row(1, 1, 2, models.FriendshipStatusBlocked)

	assert.Equal(t, StatusNone, StatusBetween(1, nil))
	assert.Equal(t, StatusPendingSent, StatusBetween(1, &sent))
	assert.Equal(t, StatusPendingReceived, StatusBetween(2, &sent))
	assert.Equal(t, StatusFriends, StatusBetween(2, &accepted))
	assert.Equal(t, StatusBlocked, StatusBetween(1, &blocked))
}
