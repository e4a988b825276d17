package xcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type counter struct {
	ID    string `gorm:"primaryKey"`
	Value int
}

func newTestDB(t *testing.T) context.Context {
	db, err := gorm.Open(sqlite.Open("file:xcontext_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&counter{}))
	require.NoError(t, db.AutoMigrate(&counter{}))

	return WithDB(context.Background(), db)
}

func TestTransaction_Commit(t *testing.T) {
	ctx := newTestDB(t)

	txCtx := WithDBTransaction(ctx)
	require.NoError(t, DB(txCtx).Create(&counter{ID: "a", Value: 1}).Error)
	require.NoError(t, WithCommitDBTransaction(txCtx))
	WithRollbackDBTransaction(txCtx)

	var c counter
	require.NoError(t, DB(ctx).Take(&c, "id=?", "a").Error)
	require.Equal(t, 1, c.Value)
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := newTestDB(t)

	txCtx := WithDBTransaction(ctx)
	require.NoError(t, DB(txCtx).Create(&counter{ID: "b", Value: 1}).Error)
	WithRollbackDBTransaction(txCtx)

	err := DB(ctx).Take(&counter{}, "id=?", "b").Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := newTestDB(t)

	outer := WithDBTransaction(ctx)
	inner := WithDBTransaction(outer)
	require.NoError(t, DB(inner).Create(&counter{ID: "c", Value: 1}).Error)
	require.NoError(t, WithCommitDBTransaction(inner))

	// The outer transaction still owns the commit.
	WithRollbackDBTransaction(outer)

	err := DB(ctx).Take(&counter{}, "id=?", "c").Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := WithClock(context.Background(), func() time.Time { return fixed })
	require.Equal(t, fixed, Now(ctx))
	require.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
}

func TestResponseSlots(t *testing.T) {
	ctx := WithResponseSlots(context.Background())
	require.Nil(t, Error(ctx))

	SetError(ctx, errors.New("boom"))
	SetResponse(ctx, 42)
	require.EqualError(t, Error(ctx), "boom")
	require.Equal(t, 42, GetResponse(ctx))
}
