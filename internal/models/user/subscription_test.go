package models_test

import (
	"context"
	"testing"

	"github.com/mnuddindev/foodgram/internal/db/dbtest"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeLifecycle(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	reader := newUser(t, db, "reader")
	author := newUser(t, db, "author")

	got, err := user.Subscribe(ctx, db, reader.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	_, err = user.Subscribe(ctx, db, reader.ID, author.ID)
	assert.True(t, utils.IsKind(err, utils.KindAlreadyExists))

	subscribed, err := user.SubscribedTo(ctx, db, reader.ID, []uint{author.ID, reader.ID})
	require.NoError(t, err)
	assert.True(t, subscribed[author.ID])
	assert.False(t, subscribed[reader.ID])

	authors, count, err := user.ListSubscriptions(ctx, db, reader.ID, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, authors, 1)
	assert.Equal(t, "author", authors[0].Username)

	require.NoError(t, user.Unsubscribe(ctx, db, reader.ID, author.ID))
	err = user.Unsubscribe(ctx, db, reader.ID, author.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestSubscribeToSelfAlwaysFails(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	u := newUser(t, db, "narcissus")

	for i := 0; i < 2; i++ {
		_, err := user.Subscribe(ctx, db, u.ID, u.ID)
		require.Error(t, err)
		assert.True(t, utils.IsKind(err, utils.KindValidation))
	}

	err := db.Create(&user.Subscription{UserID: u.ID, AuthorID: u.ID}).Error
	assert.Error(t, err, "the store rejects self subscriptions too")

	_, err = user.Subscribe(ctx, db, 12345, 12345)
	assert.True(t, utils.IsKind(err, utils.KindValidation), "even for unknown users")
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	u := newUser(t, db, "reader")

	_, err := user.Subscribe(ctx, db, u.ID, 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFoundEntity))

	err = user.Unsubscribe(ctx, db, u.ID, 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFoundEntity))
}

func TestSubscribedToAnonymous(t *testing.T) {
	db := dbtest.New(t)
	out, err := user.SubscribedTo(context.Background(), db, 0, []uint{1, 2})
	require.NoError(t, err)
	assert.Empty(t, out)
}
