package main

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "coop-lending-engine/internal/adapter/http"
	"coop-lending-engine/internal/adapter/middleware"
	"coop-lending-engine/internal/adapter/repository/mysql"
	"coop-lending-engine/internal/config"
	"coop-lending-engine/internal/infrastructure/cache"
	"coop-lending-engine/internal/infrastructure/db"
	"coop-lending-engine/internal/notify"
	loanUC "coop-lending-engine/internal/usecase/loan"
	memberUC "coop-lending-engine/internal/usecase/member"
	reportUC "coop-lending-engine/internal/usecase/report"
	requestUC "coop-lending-engine/internal/usecase/request"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal("mysql", zap.Error(err))
	}
	log.Info("mysql connected", zap.String("db", cfg.MySQLDB))

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	log.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	// repositories
	members := mysql.NewMemberRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	loanTypes := mysql.NewLoanTypeRepository(gdb)
	payments := mysql.NewPaymentRepository(gdb)
	requests := mysql.NewRequestRepository(gdb)
	policies := mysql.NewPolicyRepository(gdb)
	guow := mysql.NewGormUoW(gdb)

	// usecases
	approveUpTo, reviewUpTo := cfg.Thresholds()
	memberUsecase := memberUC.NewUsecase(members, guow)
	loanUsecase := loanUC.NewUsecase(loans, payments, loanTypes, guow, log)
	requestUsecase := requestUC.NewUsecase(
		members, requests, loanTypes, policies, guow,
		notify.NewLogNotifier(log),
		requestUC.Config{ApproveUpTo: approveUpTo, ReviewUpTo: reviewUpTo},
	)
	reportUsecase := reportUC.NewUsecase(loans, payments)

	// handlers
	h := httpadp.NewHandler()
	memberHandler := httpadp.NewMemberHandler(memberUsecase)
	loanHandler := httpadp.NewLoanHandler(loanUsecase)
	requestHandler := httpadp.NewRequestHandler(requestUsecase)
	reportHandler := httpadp.NewReportHandler(reportUsecase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log)

	// routes
	e.GET("/health", h.Health)

	e.POST("/members", memberHandler.EnsureMember, idemp)
	e.GET("/members", memberHandler.ListMembers)
	e.GET("/members/:member_id", memberHandler.GetMember)
	e.PUT("/members/:member_id/profile", memberHandler.UpdateProfile)
	e.POST("/members/:member_id/status", memberHandler.ChangeStatus)
	e.POST("/members/:member_id/deactivate", memberHandler.Deactivate)
	e.GET("/members/:member_id/loans", reportHandler.MemberLoans)

	e.POST("/loans", loanHandler.CreateLoan, idemp)
	e.GET("/loans/:loan_id", loanHandler.GetLoan)
	e.POST("/loans/:loan_id/disbursements", loanHandler.RecordDisbursement, idemp)
	e.POST("/loans/:loan_id/payments", loanHandler.RecordPayment, idemp)
	e.POST("/loans/:loan_id/cancel", loanHandler.CancelLoan)
	e.POST("/loans/reclassify-delinquent", loanHandler.ReclassifyDelinquent)

	e.POST("/loan-types", loanHandler.CreateLoanType)
	e.PUT("/loan-types/:type_id", loanHandler.UpdateLoanType)
	e.GET("/loan-types", loanHandler.ListLoanTypes)

	e.POST("/requests/simulate", requestHandler.Simulate)
	e.POST("/requests", requestHandler.Submit, idemp)
	e.GET("/requests/:request_id/evaluation", requestHandler.Evaluate)
	e.POST("/requests/:request_id/observations", requestHandler.RecordObservation)
	e.POST("/requests/:request_id/decision", requestHandler.Decide, idemp)

	e.POST("/policies", requestHandler.CreatePolicy)
	e.GET("/policies", requestHandler.ListPolicies)

	e.GET("/reports/credit-history", reportHandler.CreditHistory)

	addr := ":" + cfg.AppPort
	log.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
