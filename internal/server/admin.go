package server

import (
	"net/http"
	"time"
)

// adminStats is the /api/admin/stats payload.
type adminStats struct {
	Version           string `json:"version"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	ActiveConnections int64  `json:"active_connections"`
	TotalRequests     uint64 `json:"total_requests"`
	Capabilities      int    `json:"capabilities"`
}

// adminPlugin is one entry of the /api/admin/plugins payload.
type adminPlugin struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Operations  []string `json:"operations"`
	Resources   []string `json:"resources"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, adminStats{
		Version:           s.serverInfo.Version,
		UptimeSeconds:     int64(time.Since(s.startTime).Seconds()),
		ActiveConnections: s.activeConns.Load(),
		TotalRequests:     s.totalRequests.Load(),
		Capabilities:      len(s.registry.List()),
	})
}

func (s *Server) handleAdminPlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	plugins := s.registry.List()
	entries := make([]adminPlugin, 0, len(plugins))
	for _, p := range plugins {
		meta := p.Metadata()
		entry := adminPlugin{
			Name:        meta.Name,
			Description: meta.Description,
			Category:    meta.Category,
			Operations:  meta.Operations,
			Resources:   []string{},
		}
		for _, info := range p.Resources() {
			entry.Resources = append(entry.Resources, info.Suffix)
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, entries)
}
