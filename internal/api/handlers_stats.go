package api

import (
	"net/http"
)

func (s *Server) handleDeviceStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "device stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"adb_path": s.cfg.ADBPath,
		"serial":   s.cfg.ADBSerial,
		"stats":    s.stats.Snapshot(),
	})
}
