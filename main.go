// Package main equipment rental admin API.
//
// @title           Rental Admin API
// @version         1.0
// @description     Equipment rental administration (equipment, bookings, payments, users, audit log).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"rentaladmin/app/echoServer"
	activityctrl "rentaladmin/app/echoServer/controller/activity"
	authctrl "rentaladmin/app/echoServer/controller/auth"
	bookingctrl "rentaladmin/app/echoServer/controller/booking"
	dashboardctrl "rentaladmin/app/echoServer/controller/dashboard"
	equipmentctrl "rentaladmin/app/echoServer/controller/equipment"
	paymentctrl "rentaladmin/app/echoServer/controller/payment"
	userctrl "rentaladmin/app/echoServer/controller/user"
	"rentaladmin/app/echoServer/validation"
	"rentaladmin/config"
	activityrepo "rentaladmin/repository/activity"
	bookingrepo "rentaladmin/repository/booking"
	equipmentrepo "rentaladmin/repository/equipment"
	paymentrepo "rentaladmin/repository/payment"
	statsrepo "rentaladmin/repository/stats"
	userrepo "rentaladmin/repository/user"
	activitysvc "rentaladmin/service/activity"
	authsvc "rentaladmin/service/auth"
	bookingsvc "rentaladmin/service/booking"
	dashboardsvc "rentaladmin/service/dashboard"
	equipmentsvc "rentaladmin/service/equipment"
	paymentsvc "rentaladmin/service/payment"
	usersvc "rentaladmin/service/user"
	"rentaladmin/util/database"
	"rentaladmin/util/redis"
	"rentaladmin/util/storage"

	"github.com/labstack/echo/v4"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx, cfg.MigrationsDir); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// redis: token blacklist
	rdb, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// minio: equipment images
	images, err := storage.NewMinIOClient(ctx,
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Error("minio connect failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db.SQL)
	er := equipmentrepo.New(db.SQL)
	br := bookingrepo.New(db.SQL)
	pr := paymentrepo.New(db.SQL)
	lr := activityrepo.New(db.SQL)
	sr := statsrepo.New(db.SQL)

	// services
	audit := activitysvc.NewLogger(lr, log)
	as := authsvc.New(ur, rdb, audit, cfg.JWTSecret, cfg.JWTTTLHours)
	us := usersvc.New(ur, audit)
	es := equipmentsvc.New(db.SQL, er, images, audit)
	bs := bookingsvc.New(db.SQL, br, audit)
	ps := paymentsvc.New(db.SQL, pr, audit)
	ds := dashboardsvc.New(sr, audit)

	if cfg.SeedAdminPassword != "" {
		if err := us.EnsureAdmin(ctx, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
	}

	// controllers
	v := validation.New()
	authC := &authctrl.Controller{Svc: as, V: v.Core(), Log: log}
	userC := &userctrl.Controller{Svc: us, V: v.Core(), Log: log}
	equipmentC := &equipmentctrl.Controller{Svc: es, V: v.Core(), Log: log}
	bookingC := &bookingctrl.Controller{Svc: bs, V: v.Core(), Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v.Core(), Log: log}
	dashboardC := &dashboardctrl.Controller{Svc: ds, Log: log}
	activityC := &activityctrl.Controller{Svc: audit, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = v

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		User:      userC,
		Equipment: equipmentC,
		Booking:   bookingC,
		Payment:   paymentC,
		Dashboard: dashboardC,
		Activity:  activityC,

		JWTSecret: cfg.JWTSecret,
		Blacklist: rdb,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
