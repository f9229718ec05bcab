package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sudokuduo/go-server/internal/coordinator"
	"github.com/sudokuduo/go-server/internal/httpserver"
	"github.com/sudokuduo/go-server/internal/presence"
	"github.com/sudokuduo/go-server/internal/puzzle"
	"github.com/sudokuduo/go-server/internal/results"
	"github.com/sudokuduo/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(envStr("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	opts := httpserver.Options{}

	// Room store: SQLite by default; DB_PATH=memory opts into the
	// ephemeral in-memory store.
	var st store.Store
	var recorder coordinator.RoundRecorder
	if dsn := envStr("DB_PATH", "./data/rooms.db"); dsn != "memory" {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("path", dsn).Msg("open database")
		}
		if err := migrate(db); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		st = store.NewSQLiteStore(db)
		rs := results.NewStore(db)
		recorder = rs
		opts.Results = rs
	} else {
		log.Warn().Msg("DB_PATH=memory; rooms will not survive a restart")
		st = store.NewMemoryStore()
	}

	// Puzzle source: hosted generator with an API key, local fallback without.
	var src puzzle.Source
	if key := envStr("SUDOKU_API_KEY", ""); key != "" {
		src = puzzle.NewAPINinjas(key)
		log.Info().Msg("puzzle source: api-ninjas")
	} else {
		src = puzzle.NewLocal()
		log.Info().Msg("puzzle source: local generator")
	}

	// Presence gateway: Pusher when configured, local websocket hub otherwise.
	var gw presence.Gateway
	if p, ok := presence.NewPusherFromEnv(); ok {
		gw = p
		opts.Pusher = p
		log.Info().Msg("presence gateway: pusher")
	} else {
		hub := presence.NewHub()
		gw = hub
		opts.Hub = hub
		log.Info().Msg("presence gateway: local websocket hub")
	}

	coord := coordinator.New(st, gw, src, recorder)

	// Sweep expired rooms so pending slots are collected with their record.
	ttl := envDuration("ROOM_TTL", 24*time.Hour)
	interval := envDuration("ROOM_SWEEP_INTERVAL", time.Hour)
	go func() {
		for range time.Tick(interval) {
			if _, err := coord.Sweep(context.Background(), time.Now().Add(-ttl)); err != nil {
				log.Warn().Err(err).Msg("room sweep failed")
			}
		}
	}()

	srv := httpserver.New(coord, opts)
	port := envStr("PORT", "3001")
	log.Info().Str("port", port).Msg("starting sudoku rooms server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
