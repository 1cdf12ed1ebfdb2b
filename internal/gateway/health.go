package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

type healthResponse struct {
	Status    string `json:"status"`
	Rooms     int    `json:"rooms"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// HandleHealth answers GET /health with room-count and uptime bookkeeping,
// grounded on the teacher's bare-bones /health handler but extended with
// the fields SPEC_FULL.md's ambient stack calls for.
func (g *Gateway) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Rooms:     g.reg.Count(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    humanize.Time(g.startedAt),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleRoot answers GET / with a one-line plain-text summary (connection
// and room counts), for a quick curl check against a bare deployment.
func (g *Gateway) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("duotaire server: " + humanize.Comma(int64(g.connectionCount())) + " connection(s), " +
		humanize.Comma(int64(g.reg.Count())) + " room(s)\n"))
}
