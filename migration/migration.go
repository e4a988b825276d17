package migration

import (
	"context"
	"errors"
	"sort"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type Migrator func(context.Context) error

var Migrators = map[string]Migrator{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Run applies every migrator that has not been recorded in the migrations
// table yet, in version order.
func Run(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	versions := make([]string, 0, len(Migrators))
	for v := range Migrators {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	for _, v := range versions {
		err := db.Take(&entity.Migration{}, "version=?", v).Error
		if err == nil {
			continue
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		xcontext.Logger(ctx).Infof("Apply migration %s", v)
		if err := Migrators[v](ctx); err != nil {
			return err
		}

		if err := db.Create(&entity.Migration{Version: v, AppliedAt: xcontext.Now(ctx)}).Error; err != nil {
			return err
		}
	}

	return nil
}
