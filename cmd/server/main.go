package main

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hangman"
	"hangman/internal/server"
	"hangman/internal/session"
	"hangman/internal/storage"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, err := storage.New(getEnv("DB_PATH", "hangman.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer store.Close()

	registry := session.NewRegistry(store)

	webFS, err := fs.Sub(hangman.WebFS, "web")
	if err != nil {
		log.Fatal().Err(err).Msg("embedded web assets")
	}

	srv := server.New(registry, store, webFS)

	addr := ":" + getEnv("PORT", "8080")
	log.Info().Str("addr", addr).Str("room", session.DefaultRoom).Msg("hangman server listening")
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
