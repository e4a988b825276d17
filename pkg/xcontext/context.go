package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/questx-lab/giveaway/config"
	"github.com/questx-lab/giveaway/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey          struct{}
	txKey          struct{}
	configsKey     struct{}
	loggerKey      struct{}
	clockKey       struct{}
	userIDKey      struct{}
	httpRequestKey struct{}
	startTimeKey   struct{}
)

type dbTx struct {
	db     *gorm.DB
	nested bool
	done   bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current transaction if the context is inside one, otherwise
// the root database.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*dbTx); ok && !tx.done {
		return tx.db
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db
}

// WithDBTransaction begins a transaction. Calling it inside an existing
// transaction joins the outer one; only the outermost commit is effective.
func WithDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(txKey{}).(*dbTx); ok && !tx.done {
		return context.WithValue(ctx, txKey{}, &dbTx{db: tx.db, nested: true})
	}

	return context.WithValue(ctx, txKey{}, &dbTx{db: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(*dbTx)
	if !ok || tx.done {
		return nil
	}

	tx.done = true
	if tx.nested {
		return nil
	}

	return tx.db.Commit().Error
}

func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(txKey{}).(*dbTx)
	if !ok || tx.done {
		return
	}

	tx.done = true
	if !tx.nested {
		tx.db.Rollback()
	}
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Default()
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

// WithClock overrides the time source used by Now.
func WithClock(ctx context.Context, clock func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, clock)
}

func Now(ctx context.Context) time.Time {
	clock, ok := ctx.Value(clockKey{}).(func() time.Time)
	if !ok {
		return time.Now()
	}

	return clock()
}

func WithRequestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	if !ok {
		return nil
	}

	return req
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok {
		return time.Time{}
	}

	return t
}
