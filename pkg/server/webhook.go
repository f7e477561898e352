package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/crypto"
	"github.com/shipsafe/cyberwatch/pkg/db"
)

const signatureHeader = "X-Hub-Signature-256"

type pushEvent struct {
	Ref        string `json:"ref"` // e.g. "refs/heads/main"
	Repository struct {
		FullName      string `json:"full_name"`
		DefaultBranch string `json:"default_branch"`
	} `json:"repository"`
}

// handleGithubWebhook validates an inbound push event and, for pushes to
// the default branch of an enrolled repository, launches a detached scan.
// The acknowledgement never waits for the scan.
func (s *Server) handleGithubWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		writeError(w, http.StatusUnauthorized, "No signature")
		return
	}

	var event pushEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Repository.FullName == "" {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	config, err := s.monitoredRepo.GetActiveMonitoredRepo(r.Context(), event.Repository.FullName)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Repository not enrolled or inactive")
			return
		}
		s.logger.Errorf(r.Context(), "Failed to load monitored repository: repository=%s, err=%+v", event.Repository.FullName, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !verifySignature(payload, config.WebhookSecret, signature) {
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	// Only pushes to the default branch trigger a scan; anything else is
	// acknowledged and ignored.
	if event.Ref == "refs/heads/"+event.Repository.DefaultBranch {
		s.logger.Infof(r.Context(), "Triggering automated scan: repository=%s", event.Repository.FullName)
		s.startAutomatedScan(config)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// verifySignature compares the provider's HMAC-SHA256 signature against one
// computed from the raw body. hmac.Equal keeps the comparison constant-time.
func verifySignature(body []byte, secret, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// startAutomatedScan runs the pipeline detached from the webhook request.
// There is no caller left to report to: failures are logged, and a non-zero
// issue count fans out to the owner's notification endpoints.
func (s *Server) startAutomatedScan(config *common.MonitoredRepo) {
	s.detached.Add(1)
	go func() {
		defer s.detached.Done()
		ctx := context.Background()

		token, err := crypto.DecryptWithBase64(&s.cipherBlock, config.GithubToken)
		if err != nil {
			s.logger.Errorf(ctx, "Failed to decrypt stored token: repository=%s, err=%+v", config.RepoFullName, err)
			return
		}
		result, err := s.scanner.Run(ctx, config.RepoFullName, token, config.UserID, "")
		if err != nil {
			s.logger.Errorf(ctx, "Automated scan failed: repository=%s, err=%+v", config.RepoFullName, err)
			return
		}
		s.logger.Infof(ctx, "Automated scan complete: repository=%s, issue_count=%d", config.RepoFullName, len(result.Issues))
		if len(result.Issues) == 0 {
			return
		}

		settings, err := s.settingsRepo.GetUserSettings(ctx, config.UserID)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				s.logger.Errorf(ctx, "Failed to load notification settings: user_id=%s, err=%+v", config.UserID, err)
			}
			return
		}
		s.notifier.Notify(ctx, settings, config.RepoFullName, len(result.Issues))
	}()
}
