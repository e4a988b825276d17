package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questx-lab/giveaway/internal/middleware"
	"github.com/questx-lab/giveaway/pkg/idutil"
	"github.com/questx-lab/giveaway/pkg/prometheus"
	"github.com/questx-lab/giveaway/pkg/router"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	if err := idutil.Init(cctx.Int64("node-id")); err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()
	s.loadGateway()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: s.router.Handler(),
	}

	log.Printf("Starting server on port: %s\n", cfg.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = router.New(xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx))
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler())

	// Campaign management and moderation need the owner.
	authRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier().WithSecret(cfg.ApiServer.AuthSecret)
	authRouter.Before(authVerifier.Middleware())
	{
		// Campaign API
		router.POST(authRouter, "/createCampaign", s.campaignDomain.Create)
		router.POST(authRouter, "/updateCampaignConfig", s.campaignDomain.UpdateConfig)
		router.POST(authRouter, "/scheduleCampaign", s.campaignDomain.Schedule)
		router.POST(authRouter, "/cancelCampaign", s.campaignDomain.Cancel)
		router.POST(authRouter, "/archiveCampaign", s.campaignDomain.Archive)
		router.GET(authRouter, "/getMyCampaigns", s.campaignDomain.GetMyCampaigns)

		// Ledger moderation API
		router.POST(authRouter, "/recordAction", s.entryDomain.RecordAction)
		router.POST(authRouter, "/revokeAction", s.entryDomain.RevokeAction)
		router.GET(authRouter, "/verifyTickets", s.ticketDomain.VerifyTickets)

		// Winner API
		router.POST(authRouter, "/selectWinners", s.winnerDomain.SelectWinners)
		router.POST(authRouter, "/redrawWinners", s.winnerDomain.RedrawWinners)
	}

	// Public API.
	router.GET(s.router, "/getCampaign", s.campaignDomain.Get)
	router.POST(s.router, "/enter", s.entryDomain.Enter)
	router.POST(s.router, "/submitVerification", s.entryDomain.SubmitVerification)
	router.GET(s.router, "/getActions", s.entryDomain.GetActions)
	router.GET(s.router, "/getTickets", s.ticketDomain.GetTickets)
	router.GET(s.router, "/getSnapshot", s.ticketDomain.GetSnapshot)
	router.GET(s.router, "/getReferrals", s.ticketDomain.GetReferrals)
	router.GET(s.router, "/getLeaderboard", s.ticketDomain.GetLeaderboard)
	router.GET(s.router, "/getWinners", s.winnerDomain.GetWinners)
	router.GET(s.router, "/verifyWinners", s.winnerDomain.VerifyWinners)
}
