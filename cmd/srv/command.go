package main

import "github.com/urfave/cli/v2"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path of the toml config file",
	EnvVars: []string{"CONFIG_FILE"},
}

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Giveaway"
	s.app.Usage = "Giveaway entry ledger and winner selection"
	s.app.Before = s.loadConfig
	s.app.Flags = []cli.Flag{configFlag}
	s.app.Commands = []*cli.Command{
		{
			Action:   s.startApi,
			Name:     "api",
			Usage:    "Start service api",
			Category: "Api",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "node-id",
					Value: 1,
					Usage: "Snowflake node of this instance, unique among api instances",
				},
			},
			Description: `Used for start service api, it serves every campaign, entry, ticket and winner api.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start campaign lifecycle cron",
			Category:    "Worker",
			Description: `Used to move campaigns to active and ended when their schedule comes.`,
		},
		{
			Action:      s.startRelay,
			Name:        "relay",
			Usage:       "Start outbox relay",
			Category:    "Worker",
			Description: `Used to publish committed ledger events from the outbox to kafka.`,
		},
		{
			Action:      s.startProjector,
			Name:        "projector",
			Usage:       "Start ledger projector",
			Category:    "Worker",
			Description: `Used to apply ledger events from kafka to the redis leaderboard.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Only apply this migration version",
				},
			},
			Description: `Used to apply pending migrations, or a single version when it is given.`,
		},
		{
			Action:   s.startReplay,
			Name:     "replay",
			Usage:    "Rebuild derived state of a campaign",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "campaign",
					Usage:    "Campaign to rebuild",
					Required: true,
				},
			},
			Description: `Used to rebuild referral edges, ticket totals and the leaderboard from the append-only log.`,
		},
	}
}
