// Package main clothing rental API.
//
// @title           Clothing Rental API
// @version         1.0
// @description     rental order, payment and catalog service.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clothesrental/app/echoServer"
	categoryctrl "clothesrental/app/echoServer/controller/category"
	itemctrl "clothesrental/app/echoServer/controller/item"
	orderctrl "clothesrental/app/echoServer/controller/order"
	paymentctrl "clothesrental/app/echoServer/controller/payment"
	"clothesrental/app/echoServer/validation"
	"clothesrental/config"
	categoryrepo "clothesrental/repository/category"
	itemrepo "clothesrental/repository/item"
	orderrepo "clothesrental/repository/order"
	payosrepo "clothesrental/repository/payos"
	storagerepo "clothesrental/repository/storage"
	categorysvc "clothesrental/service/category"
	itemsvc "clothesrental/service/item"
	ordersvc "clothesrental/service/order"
	paymentsvc "clothesrental/service/payment"
	"clothesrental/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	log := config.NewLogger(cfg)
	ctx := context.Background()

	if err := database.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	// repos
	or := orderrepo.New(db)
	ir := itemrepo.New(db)
	cr := categoryrepo.New(db)
	px := payosrepo.NewHTTP(cfg.PayOSBaseURL, cfg.PayOSClientID, cfg.PayOSAPIKey, cfg.PayOSChecksumKey)
	st, err := storagerepo.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}

	// services
	rs := ordersvc.New(db, or, ir, px, cfg.CashHoldTTL, cfg.TransferHoldTTL, log)
	ps := paymentsvc.New(rs, px, log)
	is := itemsvc.New(ir, st)
	cs := categorysvc.New(cr)

	// background expiry sweep, stopped with the server
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	sweeper := ordersvc.NewSweeper(or, rs, cfg.SweepInterval, log)
	go sweeper.Run(sweepCtx)

	// controllers
	v := validator.New()
	orderC := &orderctrl.Controller{Svc: rs, Storage: st, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	itemC := &itemctrl.Controller{Svc: is, V: v, Log: log}
	categoryC := &categoryctrl.Controller{Svc: cs, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Order:    orderC,
		Payment:  paymentC,
		Item:     itemC,
		Category: categoryC,

		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutting down")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
