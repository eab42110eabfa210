package server

import (
	"encoding/json"
	"net/http"

	"mcpi/internal/config"
	"mcpi/internal/discovery"
	"mcpi/pkg/logging"
)

// handleDiscovery serves the public discovery document. It is stateless and
// requires no session.
func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := s.registry.List()
	capabilities := make([]discovery.CapabilityDescription, 0, len(plugins))
	for _, p := range plugins {
		meta := p.Metadata()
		capabilities = append(capabilities, discovery.CapabilityDescription{
			Name:        meta.Name,
			Description: meta.Description,
			Category:    meta.Category,
			Operations:  meta.Operations,
		})
	}

	referrals := s.cfg.Referrals
	if referrals == nil {
		referrals = []config.Referral{}
	}

	doc := discovery.Document{
		Provider:     s.cfg.Provider,
		Mode:         "active",
		Capabilities: capabilities,
		Referrals:    referrals,
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("Server", err, "Failed to encode JSON response")
	}
}
