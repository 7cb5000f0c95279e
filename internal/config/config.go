// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server and client binaries need to run.
type Config struct {
	ServerName string
	UDPPort    int
	TCPPort    int

	OfferInterval time.Duration

	StartingChips   int
	MinBet          int
	MaxBet          int
	BlackjackPayout float64
	TurnTimeout     time.Duration
	BetTimeout      time.Duration

	RedisAddr string // Empty disables the round historian.
}

// Load reads .env if present, then the environment, falling back to
// defaults for anything unset. A nil log silences the loader.
func Load(log *logrus.Logger) Config {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read .env file")
	}
	return Config{
		ServerName:      getString("BJ_SERVER_NAME", "MiamiDealer"),
		UDPPort:         getInt("BJ_UDP_PORT", 13117),
		TCPPort:         getInt("BJ_TCP_PORT", 0),
		OfferInterval:   getDuration("BJ_OFFER_INTERVAL", time.Second),
		StartingChips:   getInt("BJ_STARTING_CHIPS", 1000),
		MinBet:          getInt("BJ_MIN_BET", 10),
		MaxBet:          getInt("BJ_MAX_BET", 500),
		BlackjackPayout: getFloat("BJ_BLACKJACK_PAYOUT", 1.5),
		TurnTimeout:     getDuration("BJ_TURN_TIMEOUT", 45*time.Second),
		BetTimeout:      getDuration("BJ_BET_TIMEOUT", 30*time.Second),
		RedisAddr:       getString("BJ_REDIS_ADDR", ""),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
