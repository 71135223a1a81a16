package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chatwork-bot/internal/chatwork"
	"chatwork-bot/internal/config"
	"chatwork-bot/internal/engine"
	"chatwork-bot/internal/greeting"
	"chatwork-bot/internal/lookup"
	"chatwork-bot/internal/scheduler"
	"chatwork-bot/internal/storage"
	"chatwork-bot/internal/throttle"
	"chatwork-bot/internal/webhook"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warnf("Warning: .env file not found: %v", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg := config.New()
	logrus.SetLevel(cfg.Level())

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	api := chatwork.NewClient(cfg.ChatworkBaseURL, cfg.ChatworkAPIToken, cfg.HTTPTimeout)
	gate := throttle.NewGate(cfg.SendInterval)
	sender := chatwork.NewSender(api, gate)
	roles := chatwork.NewRoleChanger(api, sender, gate)

	eng := engine.New(cfg, engine.Deps{
		Roster:       api,
		Replier:      sender,
		Roles:        roles,
		Store:        store,
		Oracle:       lookup.NewOracle(cfg.OracleURL, cfg.HTTPTimeout),
		Encyclopedia: lookup.NewWikipedia(cfg.WikipediaURL, cfg.HTTPTimeout),
		Profiles:     lookup.NewScratch(cfg.ScratchAPIURL, cfg.ScratchSiteURL, cfg.HTTPTimeout),
	})

	task := greeting.NewTask(cfg, store, sender)
	sched := scheduler.New(cfg.Location(), cfg.RoomIDs, cfg.RoomInterval)
	sched.SetRoomTask(task.Run)
	if err := sched.Start(cfg.GreetingSchedule); err != nil {
		logrus.Fatalf("failed to start scheduler: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	webhook.NewHandler(eng, cfg.HandleTimeout).Register(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "rooms": len(cfg.RoomIDs)}).Info("🚀 Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logrus.WithField("signal", sig.String()).Info("🛑 Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HandleTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
	sched.Stop()
}
