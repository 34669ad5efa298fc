package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
)

var errStoreNotConfigured = errors.New("store not configured")

type componentStatus struct {
	OK         bool   `json:"ok"`
	Backend    string `json:"backend,omitempty"`
	RulesCount *int   `json:"rules_count,omitempty"`
	Source     string `json:"source,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, the site rules and the reader
// strategy. Mode is "critical" without a store, "degraded" when the page
// pipeline runs without the reader, "optimal" otherwise.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":      storeStatus(r, d),
			"site_rules": siteRulesStatus(d),
			"reader":     readerStatus(d),
		}
		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical"
	}
	if reader, ok := components["reader"]; ok && !reader.OK {
		return "degraded"
	}
	return "optimal"
}

func storeStatus(r *http.Request, d deps.Deps) componentStatus {
	st := componentStatus{OK: true, Backend: d.StoreBackend}
	if err := pingStore(r.Context(), d); err != nil {
		st.OK = false
		st.Impact = "bookmarks-unavailable"
		st.Error = err.Error()
	}
	return st
}

func siteRulesStatus(d deps.Deps) componentStatus {
	if d.SiteRules == nil {
		return componentStatus{OK: false, Impact: "site-extraction-disabled", Error: "registry not initialized"}
	}

	count := d.SiteRules.Count()
	source := "builtin"
	if d.SiteRulesFile != "" {
		source = d.SiteRulesFile
	}
	lastReload := "never"
	if t := d.SiteRules.LastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:         true,
		RulesCount: &count,
		Source:     source,
		LastReload: lastReload,
	}
}

func readerStatus(d deps.Deps) componentStatus {
	if !d.ReaderEnabled {
		return componentStatus{OK: false, Impact: "page-extraction-only"}
	}
	return componentStatus{OK: true, Endpoint: d.ReaderBaseURL}
}
