package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shipsafe/cyberwatch/pkg/badge"
	"github.com/shipsafe/cyberwatch/pkg/db"
)

// handleBadge serves the status badge for a repository's most recent scan.
// The endpoint always answers 200 with an SVG: when the record is missing or
// unreadable the badge reports NO DATA instead of failing, so a broken image
// never appears in a README.
func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")

	svg := badge.NoData()
	scan, err := s.scanRepo.GetLatestScanByRepoName(r.Context(), repo)
	if err == nil {
		svg = badge.ForIssueCount(len(db.IssuesFromResults(scan.Results)))
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}
