package main

import (
	"fmt"

	"github.com/questx-lab/giveaway/migration"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	version := cctx.String("version")
	if version == "" {
		return migration.Run(s.ctx)
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(s.ctx)
}
