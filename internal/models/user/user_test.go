package models_test

import (
	"context"
	"testing"

	"github.com/mnuddindev/foodgram/internal/db/dbtest"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u, err := user.NewUser(context.Background(), db, username, username+"@example.com", "hash",
		user.WithFirstName("Test"), user.WithLastName("User"))
	require.NoError(t, err)
	return u
}

func TestNewUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	u, err := user.NewUser(ctx, db, " chef ", " Chef@Example.com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "chef", u.Username)
	assert.Equal(t, "chef@example.com", u.Email)

	_, err = user.NewUser(ctx, db, "other", "chef@example.com", "hash")
	assert.True(t, utils.IsKind(err, utils.KindValidation), "duplicate email")

	_, err = user.NewUser(ctx, db, "chef", "other@example.com", "hash")
	assert.True(t, utils.IsKind(err, utils.KindValidation), "duplicate username")

	for _, name := range []string{"me", "ME", "bad name", "bad/name"} {
		_, err = user.NewUser(ctx, db, name, name+"x@example.com", "hash")
		assert.True(t, utils.IsKind(err, utils.KindValidation), name)
	}
}

func TestGetUserAndPassword(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	u := newUser(t, db, "reader")

	got, err := user.GetUserCached(ctx, nil, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", got.Username)

	_, err = user.GetUserBy(ctx, db, "id = ?", 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFoundEntity))

	require.NoError(t, user.SetPassword(ctx, nil, db, u.ID, "new-hash"))
	got, err = user.GetUserBy(ctx, db, "id = ?", u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	err = user.SetPassword(ctx, nil, db, 999, "x")
	assert.True(t, utils.IsKind(err, utils.KindNotFoundEntity))
}

func TestListUsers(t *testing.T) {
	db := dbtest.New(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		newUser(t, db, name)
	}

	users, count, err := user.ListUsers(context.Background(), db, utils.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
