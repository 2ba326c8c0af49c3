package repository

import (
	"context"
	"regexp"
	"testing"

	"brewlog/internal/models"
	"brewlog/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestFriendRepository_GetBetween_UsesCanonicalPair(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "friendships" WHERE user_low_id = $1 AND user_high_id = $2 ORDER BY "friendships"."id" LIMIT $3`)).
		WithArgs(2, 5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	f, err := repo.GetBetween(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_AcceptPending_Conditional(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFriendRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "friendships" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 AND receiver_id = \$4 AND status = \$5`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.AcceptPending(context.Background(), 9, 4)
	require.NoError(t, err)
	assert.False(t, ok, "no pending row addressed to the caller")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendRepository_CreateIfAbsent_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	testutil.CreateProfile(t, db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, db, 2, "bob", models.PrivacyPublic)

	first := &models.Friendship{InitiatorID: 1, ReceiverID: 2, Status: models.FriendshipStatusPending}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(1), first.UserLowID)
	assert.Equal(t, uint(2), first.UserHighID)

	reverse := &models.Friendship{InitiatorID: 2, ReceiverID: 1, Status: models.FriendshipStatusPending}
	created, err = repo.CreateIfAbsent(ctx, reverse)
	require.NoError(t, err)
	assert.False(t, created, "the reversed pair must not create a second row")

	var n int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	existing, err := repo.GetBetween(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, first.ID, existing.ID)
}

func TestFriendRepository_AcceptAndFriendIDs_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()
	testutil.CreateProfile(t, db, 1, "alice", models.PrivacyPublic)
	testutil.CreateProfile(t, db, 2, "bob", models.PrivacyPublic)
	testutil.CreateProfile(t, db, 3, "cara", models.PrivacyPublic)

	f := &models.Friendship{InitiatorID: 2, ReceiverID: 1, Status: models.FriendshipStatusPending}
	_, err := repo.CreateIfAbsent(ctx, f)
	require.NoError(t, err)
	testutil.Befriend(t, db, 3, 1)

	ok, err := repo.AcceptPending(ctx, f.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "initiator cannot accept")

	ok, err = repo.AcceptPending(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AcceptPending(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "already accepted")

	ids, err := repo.FriendIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{2, 3}, ids)

	n, err := repo.CountAccepted(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEmpty(t, row.Initiator.Username)
		assert.NotEmpty(t, row.Receiver.Username)
	}

	require.NoError(t, repo.Delete(ctx, f.ID))
	_, err = repo.GetByID(ctx, f.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestFriendRepository_GetBetweenMany_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFriendRepository(db)
	testutil.Befriend(t, db, 1, 2)
	testutil.Befriend(t, db, 3, 1)
	testutil.Befriend(t, db, 2, 3)

	rows, err := repo.GetBetweenMany(context.Background(), 1, []uint{2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.GetBetweenMany(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
