package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"duotaire/internal/gateway"
	"duotaire/internal/matchmaking"
	"duotaire/internal/registry"
)

func main() {
	log.SetOutput(newLogWriter(os.Stderr))
	log.SetFlags(log.Ldate | log.Ltime)

	reg := registry.New()
	defer reg.Stop()
	mm := matchmaking.New(reg)
	gw := gateway.New(reg, mm)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", gw.HandleHealth)
	mux.HandleFunc("/", gw.HandleRoot)

	addr := strings.TrimSpace(os.Getenv("PORT"))
	if addr == "" {
		addr = "2567"
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	log.Printf("[Server] Starting duotaire server on %s", addr)
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
