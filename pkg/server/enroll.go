package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	gogithub "github.com/google/go-github/v44/github"
	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/crypto"
)

const webhookSecretBytes = 20

type enrollRequest struct {
	RepoFullName string `json:"repoFullName"`
	GithubToken  string `json:"githubToken"`
}

// handleEnroll registers a push webhook on the repository and records the
// monitoring config. The registry row is the durability point: a created
// remote hook whose row fails to persist is surfaced as an error and the
// caller re-enrolls, which upserts over the partial state.
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RepoFullName == "" || req.GithubToken == "" {
		writeError(w, http.StatusBadRequest, "Repository and GitHub token are required")
		return
	}
	if s.appURL == "" {
		s.logger.Errorf(r.Context(), "Public app URL is not configured, cannot enroll webhooks")
		writeError(w, http.StatusInternalServerError, "Webhook endpoint is not configured")
		return
	}
	owner, repo, err := common.SplitRepoFullName(req.RepoFullName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := generateSecret()
	if err != nil {
		s.logger.Errorf(r.Context(), "Failed to generate webhook secret: err=%+v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hookURL := s.appURL + "/api/webhooks/github"
	webhookID, err := s.githubClient.CreateWebhook(r.Context(), req.GithubToken, owner, repo, hookURL, secret)
	if err != nil {
		s.logger.Errorf(r.Context(), "Failed to create webhook: repository=%s, err=%+v", req.RepoFullName, err)
		status, message := webhookErrorResponse(err)
		writeError(w, status, message)
		return
	}

	encryptedToken, err := crypto.EncryptWithBase64(&s.cipherBlock, req.GithubToken)
	if err != nil {
		s.logger.Errorf(r.Context(), "Failed to encrypt token: repository=%s, err=%+v", req.RepoFullName, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.monitoredRepo.UpsertMonitoredRepo(r.Context(), &common.MonitoredRepo{
		UserID:        user.ID,
		RepoFullName:  req.RepoFullName,
		WebhookID:     webhookID,
		WebhookSecret: secret,
		GithubToken:   encryptedToken,
		Active:        true,
	}); err != nil {
		s.logger.Errorf(r.Context(), "Failed to save monitored repository: repository=%s, err=%+v", req.RepoFullName, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"webhookId": webhookID,
		"message":   "Uplink established. Cyber-Watch is now monitoring " + req.RepoFullName,
	})
}

// webhookErrorResponse maps a provider failure onto the response. Provider
// client errors (hook already exists, token lacks admin scope) carry their
// own status and message through.
func webhookErrorResponse(err error) (int, string) {
	var ghErr *gogithub.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode, "GitHub Error: " + ghErr.Message
	}
	return http.StatusInternalServerError, err.Error()
}

func generateSecret() (string, error) {
	buf := make([]byte, webhookSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type toggleRequest struct {
	RepoFullName string `json:"repoFullName"`
	Active       bool   `json:"active"`
}

func (s *Server) handleMonitorToggle(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RepoFullName == "" {
		writeError(w, http.StatusBadRequest, "Repository is required")
		return
	}
	if err := s.monitoredRepo.UpdateMonitoredRepoActive(r.Context(), user.ID, req.RepoFullName, req.Active); err != nil {
		s.logger.Errorf(r.Context(), "Failed to toggle monitoring: repository=%s, err=%+v", req.RepoFullName, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "active": req.Active})
}
