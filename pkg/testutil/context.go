package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/giveaway/config"
	"github.com/questx-lab/giveaway/migration"
	"github.com/questx-lab/giveaway/pkg/logger"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Now is the initial time of every mock clock.
var Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Clock is a settable time source for tests.
type Clock struct {
	mutex sync.Mutex
	now   time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

// NewMockContext returns a context holding an isolated in-memory database
// with every table migrated, default configs, a silent logger and a clock
// fixed at Now.
func NewMockContext() context.Context {
	ctx, _ := NewMockContextWithClock()
	return ctx
}

func NewMockContextWithClock() (context.Context, *Clock) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Concurrent transactions wait for the only connection instead of
	// failing with a locked table.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Default()
	cfg.ApiServer.DefaultLimit = 10
	cfg.ApiServer.MaxLimit = 50
	cfg.Verification.Secret = "test-secret"

	clock := NewClock(Now)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithClock(ctx, clock.Now)
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx, clock
}

func NewMockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
