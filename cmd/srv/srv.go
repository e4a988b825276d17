package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/questx-lab/giveaway/config"
	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain"
	"github.com/questx-lab/giveaway/internal/domain/referral"
	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/internal/domain/ticket"
	"github.com/questx-lab/giveaway/internal/domain/verification"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/migration"
	"github.com/questx-lab/giveaway/pkg/logger"
	"github.com/questx-lab/giveaway/pkg/router"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/questx-lab/giveaway/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	campaignRepo    repository.CampaignRepository
	entrantRepo     repository.EntrantRepository
	entryActionRepo repository.EntryActionRepository
	ticketRepo      repository.TicketRepository
	referralRepo    repository.ReferralRepository
	winnerRepo      repository.WinnerRepository
	outboxRepo      repository.OutboxRepository

	redisClient xredis.Client

	accountant    ticket.Accountant
	referralGraph referral.Graph
	leaderboard   statistic.Leaderboard
	gateway       verification.Gateway

	campaignDomain domain.CampaignDomain
	entryDomain    domain.EntryDomain
	ticketDomain   domain.TicketDomain
	winnerDomain   domain.WinnerDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "postgres":
		dialector = postgres.Open(cfg.ConnectionString())
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		panic("unsupported database driver " + cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Run(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.campaignRepo = repository.NewCampaignRepository()
	s.entrantRepo = repository.NewEntrantRepository()
	s.entryActionRepo = repository.NewEntryActionRepository()
	s.ticketRepo = repository.NewTicketRepository()
	s.referralRepo = repository.NewReferralRepository()
	s.winnerRepo = repository.NewWinnerRepository()
	s.outboxRepo = repository.NewOutboxRepository()
}

// loadGateway routes visit url proofs to the tracked link tokens and every
// social action to proofs signed by the upstream verifiers.
func (s *srv) loadGateway() {
	cfg := xcontext.Configs(s.ctx).Verification
	if cfg.Secret == "" {
		log.Println("Verification secret is empty, every proof will be rejected")
	}

	socialKinds := []entity.ActionKind{}
	for _, kind := range entity.ActionKinds() {
		if kind.IsSocial() {
			socialKinds = append(socialKinds, kind)
		}
	}

	s.gateway = verification.NewMux(nil).
		Handle(verification.NewVisitTokenGateway(cfg.Secret, cfg.VisitTokenTTL, cfg.AllowedSkew), entity.VisitURL).
		Handle(verification.NewHMACGateway(cfg.Secret, cfg.ProofTTL, cfg.AllowedSkew), socialKinds...)
}

func (s *srv) loadDomains() {
	ownerVerifier := common.NewCampaignOwnerVerifier(s.campaignRepo)

	s.accountant = ticket.NewAccountant(s.entryActionRepo, s.ticketRepo)
	s.referralGraph = referral.NewGraph(s.referralRepo, s.entrantRepo, s.entryActionRepo)
	s.leaderboard = statistic.New(s.ticketRepo, s.redisClient)

	s.campaignDomain = domain.NewCampaignDomain(s.campaignRepo, ownerVerifier)
	s.entryDomain = domain.NewEntryDomain(s.campaignRepo, s.entrantRepo, s.entryActionRepo,
		s.ticketRepo, s.outboxRepo, s.referralGraph, s.gateway, ownerVerifier)
	s.ticketDomain = domain.NewTicketDomain(s.campaignRepo, s.entrantRepo, s.accountant,
		s.referralGraph, s.leaderboard, ownerVerifier)
	s.winnerDomain = domain.NewWinnerDomain(s.campaignRepo, s.winnerRepo, s.outboxRepo,
		s.accountant, ownerVerifier)
}

func (s *srv) kafkaBrokers() []string {
	return strings.Split(xcontext.Configs(s.ctx).Kafka.Addr, ",")
}
