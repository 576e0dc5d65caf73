// Package config loads server configuration from the environment, the way
// the teacher's apps/server/internal/auth.NewServiceFromEnv and
// apps/server/main.go read SERVER_ADDR: trimmed os.Getenv lookups with a
// hardcoded default, no external config library.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr     = ":18080"
	defaultIdleRoomTTL     = 60 * time.Second
	defaultCleanupInterval = 30 * time.Second
	defaultMaxMembers      = 8
	defaultSendBufferSize  = 256
)

// defaultCatalogPaths mirrors main.go's personaPaths/chapterPaths pattern:
// try a path relative to the working directory, then one relative to a
// package directory, so `go run ./cmd/server` works both from the repo
// root and from cmd/server itself.
var (
	defaultCardCatalogPaths = []string{"data/cards.json", "../../data/cards.json"}
	defaultMapCatalogPaths  = []string{"data/maps.json", "../../data/maps.json"}
)

// Config is the server's full runtime configuration.
type Config struct {
	ListenAddr string

	CardCatalogPaths []string
	MapCatalogPaths  []string

	DefaultMaxMembers int
	IdleRoomTTL       time.Duration
	CleanupInterval   time.Duration
	SendBufferSize    int
}

// FromEnv builds a Config from the process environment, falling back to
// defaults for anything unset or invalid.
func FromEnv() Config {
	cfg := Config{
		ListenAddr:        defaultListenAddr,
		CardCatalogPaths:  defaultCardCatalogPaths,
		MapCatalogPaths:   defaultMapCatalogPaths,
		DefaultMaxMembers: defaultMaxMembers,
		IdleRoomTTL:       defaultIdleRoomTTL,
		CleanupInterval:   defaultCleanupInterval,
		SendBufferSize:    defaultSendBufferSize,
	}

	if addr := strings.TrimSpace(os.Getenv("SERVER_ADDR")); addr != "" {
		cfg.ListenAddr = addr
	}
	if p := strings.TrimSpace(os.Getenv("CARD_CATALOG_PATH")); p != "" {
		cfg.CardCatalogPaths = []string{p}
	}
	if p := strings.TrimSpace(os.Getenv("MAP_CATALOG_PATH")); p != "" {
		cfg.MapCatalogPaths = []string{p}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_MAX_MEMBERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 {
			cfg.DefaultMaxMembers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_IDLE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.IdleRoomTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_CLEANUP_INTERVAL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CleanupInterval = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("CONNECTION_SEND_BUFFER")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendBufferSize = n
		}
	}

	return cfg
}
