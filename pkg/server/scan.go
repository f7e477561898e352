package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/db"
)

type scanRequest struct {
	FullName    string `json:"full_name"`
	GithubToken string `json:"github_token"`
	Language    string `json:"language"`
}

type scanRecordResponse struct {
	ScanID    string         `json:"scanId"`
	RepoName  string         `json:"repoName"`
	RepoURL   string         `json:"repoUrl"`
	Status    string         `json:"status"`
	Issues    []common.Issue `json:"issues"`
	IsPublic  bool           `json:"isPublic"`
	ShareSlug string         `json:"shareSlug,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toScanRecordResponse(scan *common.Scan) scanRecordResponse {
	return scanRecordResponse{
		ScanID:    scan.ScanID,
		RepoName:  scan.RepoName,
		RepoURL:   scan.RepoURL,
		Status:    scan.Status,
		Issues:    db.IssuesFromResults(scan.Results),
		IsPublic:  scan.IsPublic,
		ShareSlug: scan.ShareSlug,
		CreatedAt: scan.CreatedAt,
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GithubToken == "" {
		writeError(w, http.StatusBadRequest, "GitHub token is required")
		return
	}

	// Make sure the requester exists in the local user table before the
	// scan record references it. Failure here is not worth aborting the
	// scan for.
	if err := s.userRepo.UpsertUser(r.Context(), &common.User{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Image:  user.Image,
	}); err != nil {
		s.logger.Warnf(r.Context(), "Failed to upsert user: user_id=%s, err=%+v", user.ID, err)
	}

	result, err := s.scanner.Run(r.Context(), req.FullName, req.GithubToken, user.ID, req.Language)
	if err != nil {
		s.logger.Errorf(r.Context(), "Manual scan failed: repository=%s, user_id=%s, err=%+v", req.FullName, user.ID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type shareRequest struct {
	IsPublic bool `json:"isPublic"`
}

func (s *Server) handleShareToggle(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "id")
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	scan, err := s.scanRepo.UpdateScanVisibility(r.Context(), scanID, req.IsPublic)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Scan not found")
			return
		}
		s.logger.Errorf(r.Context(), "Failed to update scan visibility: scan_id=%s, err=%+v", scanID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toScanRecordResponse(scan))
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "id")
	if err := s.scanRepo.DeleteScan(r.Context(), scanID); err != nil {
		s.logger.Errorf(r.Context(), "Failed to delete scan: scan_id=%s, err=%+v", scanID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSharedScan(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	scan, err := s.scanRepo.GetScanByShareSlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Shared scan not found")
			return
		}
		s.logger.Errorf(r.Context(), "Failed to look up shared scan: err=%+v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toScanRecordResponse(scan))
}
