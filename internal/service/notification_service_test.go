package service

import (
	"context"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Lifecycle(t *testing.T) {
	ts := newTestServices(t, "")
	ctx := context.Background()
	testutil.CreateProfile(t, ts.db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, ts.db, 2, "bob", models.PrivacyPublic)

	for i := 0; i < 3; i++ {
		ts.notifications.Notify(ctx, &models.Notification{UserID: 1, Type: models.NotificationLike, ActorID: uintPtr(2)})
	}
	ts.notifications.Notify(ctx, &models.Notification{UserID: 1, Type: models.NotificationLike, ActorID: uintPtr(1)})
	assert.Equal(t, 3, ts.pushed[1], "self notifications are dropped")

	count, err := ts.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	list, err := ts.notifications.List(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = ts.notifications.MarkRead(ctx, list[0].ID, 2)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "another user's notification")
	require.NoError(t, ts.notifications.MarkRead(ctx, list[0].ID, 1))

	unread, err := ts.notifications.List(ctx, 1, 0, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	n, err := ts.notifications.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	count, err = ts.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_NilIsSilent(t *testing.T) {
	var svc *NotificationService
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), &models.Notification{UserID: 1})
	})
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 100))
	assert.Equal(t, 20, clampLimit(-5, 20, 100))
	assert.Equal(t, 7, clampLimit(7, 20, 100))
	assert.Equal(t, 100, clampLimit(500, 20, 100))
}
