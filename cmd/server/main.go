// Command server is the process entrypoint: it wires config, the card and
// map catalogs, the room registry, and the gateway's HTTP mux together,
// grounded on apps/server/main.go's own sequential bootstrap-then-listen
// shape (and its withCORS wrapper, carried over unchanged for a browser
// frontend served from a different origin).
package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/internal/config"
	"github.com/inkfarer/Tableturfer/internal/gateway"
	"github.com/inkfarer/Tableturfer/room"
)

func loadCardCatalog(paths []string) *catalog.CardCatalog {
	var lastErr error
	for _, p := range paths {
		cat, err := catalog.LoadCardCatalogFile(p)
		if err == nil {
			log.Printf("[Server] Card catalog loaded from %s: %d cards", p, cat.Count())
			return cat
		}
		lastErr = err
	}
	log.Fatalf("[Server] Failed to load card catalog, tried %v: %v", paths, lastErr)
	return nil
}

func loadMapCatalog(paths []string) *catalog.MapCatalog {
	var lastErr error
	for _, p := range paths {
		cat, err := catalog.LoadMapCatalogFile(p)
		if err == nil {
			log.Printf("[Server] Map catalog loaded from %s: %d maps", p, cat.Count())
			return cat
		}
		lastErr = err
	}
	log.Fatalf("[Server] Failed to load map catalog, tried %v: %v", paths, lastErr)
	return nil
}

func main() {
	cfg := config.FromEnv()

	cards := loadCardCatalog(cfg.CardCatalogPaths)
	maps := loadMapCatalog(cfg.MapCatalogPaths)

	registry := room.NewRegistry(cards, maps, cfg.IdleRoomTTL, cfg.CleanupInterval, rand.New(rand.NewSource(time.Now().UnixNano())))
	defer registry.Stop()

	gw := gateway.New(registry, cfg.SendBufferSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Printf("[Server] Starting WebSocket server on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, withCORS(mux)); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
