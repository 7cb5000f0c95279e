package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/internal/cache"
	"github.com/gayagur/blackjack-hackathon/internal/config"
	"github.com/gayagur/blackjack-hackathon/internal/discovery"
	"github.com/gayagur/blackjack-hackathon/internal/game"
	"github.com/gayagur/blackjack-hackathon/internal/server"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	nameFlag := flag.String("name", "", "server display name (overrides BJ_SERVER_NAME)")
	tcpFlag := flag.Int("tcp-port", -1, "TCP game port, 0 for OS-assigned (overrides BJ_TCP_PORT)")
	udpFlag := flag.Int("udp-port", -1, "UDP discovery port (overrides BJ_UDP_PORT)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debugFlag {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load(log)
	if *nameFlag != "" {
		cfg.ServerName = *nameFlag
	}
	if *tcpFlag >= 0 {
		cfg.TCPPort = *tcpFlag
	}
	if *udpFlag >= 0 {
		cfg.UDPPort = *udpFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		if err := cache.Init(ctx, cfg.RedisAddr); err != nil {
			log.WithError(err).Warn("round historian disabled, redis unreachable")
		} else {
			log.WithField("addr", cfg.RedisAddr).Info("round historian connected")
			defer cache.Close()
		}
	}

	gameCfg := game.Config{
		StartingChips:   cfg.StartingChips,
		MinBet:          cfg.MinBet,
		MaxBet:          cfg.MaxBet,
		BlackjackPayout: cfg.BlackjackPayout,
		TurnTimeout:     cfg.TurnTimeout,
		BetTimeout:      cfg.BetTimeout,
	}

	srv := server.New(gameCfg, log)
	if err := srv.Listen(fmt.Sprintf(":%d", cfg.TCPPort)); err != nil {
		log.WithError(err).Fatal("failed to bind game port")
	}

	bc, err := discovery.NewBroadcaster(cfg.UDPPort, srv.Port(), cfg.ServerName, log,
		discovery.WithInterval(cfg.OfferInterval))
	if err != nil {
		log.WithError(err).Fatal("failed to start discovery broadcaster")
	}
	go bc.Run(ctx)

	log.WithFields(logrus.Fields{
		"name":     cfg.ServerName,
		"tcp_port": srv.Port(),
		"udp_port": cfg.UDPPort,
	}).Info("blackjack server up")

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("shutdown complete")
}
