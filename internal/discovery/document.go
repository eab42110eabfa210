package discovery

import "mcpi/internal/config"

// Document is the REST discovery payload: everything an agent needs to
// decide whether and how to open a session, derived directly from the
// capability model with no session or negotiation involved.
type Document struct {
	Provider     config.Provider         `json:"provider"`
	Mode         string                  `json:"mode"`
	Capabilities []CapabilityDescription `json:"capabilities"`
	Referrals    []config.Referral       `json:"referrals"`
}

// CapabilityDescription summarizes one capability for the discovery document.
type CapabilityDescription struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Operations  []string `json:"operations"`
}
