package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/crypto"
	"github.com/shipsafe/cyberwatch/pkg/db"
	"github.com/stretchr/testify/mock"
)

const testWebhookSecret = "0f0f0f0f0f0f0f0f0f0f"

func pushPayload(ref, fullName, defaultBranch string) []byte {
	return []byte(fmt.Sprintf(`{"ref":"%s","repository":{"full_name":"%s","default_branch":"%s"}}`,
		ref, fullName, defaultBranch))
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(payload []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	return req
}

func enrolledRepo(t *testing.T, s *Server) *common.MonitoredRepo {
	t.Helper()
	encrypted, err := crypto.EncryptWithBase64(&s.cipherBlock, "gh-token")
	if err != nil {
		t.Fatalf("Unexpected error occured, err=%+v", err)
	}
	return &common.MonitoredRepo{
		UserID:        "user-1",
		RepoFullName:  "octocat/hello",
		WebhookID:     "123",
		WebhookSecret: testWebhookSecret,
		GithubToken:   encrypted,
		Active:        true,
	}
}

func TestWebhookMissingSignature(t *testing.T) {
	s, _ := newTestServer(t, testAppURL)
	payload := pushPayload("refs/heads/main", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestWebhookInvalidPayload(t *testing.T) {
	s, _ := newTestServer(t, testAppURL)
	payload := []byte("not json")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, testWebhookSecret)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestWebhookNotEnrolled(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.monitored.On("GetActiveMonitoredRepo", mock.Anything, "octocat/hello").Return(nil, db.ErrNotFound)

	payload := pushPayload("refs/heads/main", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, testWebhookSecret)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.monitored.On("GetActiveMonitoredRepo", mock.Anything, "octocat/hello").Return(enrolledRepo(t, s), nil)

	payload := pushPayload("refs/heads/main", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, "wrong-secret")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	m.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookNonDefaultBranch(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.monitored.On("GetActiveMonitoredRepo", mock.Anything, "octocat/hello").Return(enrolledRepo(t, s), nil)

	payload := pushPayload("refs/heads/feature/x", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, testWebhookSecret)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	s.WaitDetached()
	m.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookDefaultBranchTriggersScanAndNotifies(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.monitored.On("GetActiveMonitoredRepo", mock.Anything, "octocat/hello").Return(enrolledRepo(t, s), nil)
	m.runner.On("Run", mock.Anything, "octocat/hello", "gh-token", "user-1", "").
		Return(&common.ScanResult{Issues: []common.Issue{{Title: "A"}, {Title: "B"}}, ScanID: "scan-1"}, nil)
	settings := &common.UserSettings{UserID: "user-1", DiscordWebhook: "https://discord.example.com/hook"}
	m.settings.On("GetUserSettings", mock.Anything, "user-1").Return(settings, nil)
	m.notifier.On("Notify", mock.Anything, settings, "octocat/hello", 2).Return()

	payload := pushPayload("refs/heads/main", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, testWebhookSecret)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	s.WaitDetached()
	m.runner.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestWebhookCleanScanSkipsNotification(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.monitored.On("GetActiveMonitoredRepo", mock.Anything, "octocat/hello").Return(enrolledRepo(t, s), nil)
	m.runner.On("Run", mock.Anything, "octocat/hello", "gh-token", "user-1", "").
		Return(&common.ScanResult{Issues: []common.Issue{}, ScanID: "scan-1"}, nil)

	payload := pushPayload("refs/heads/main", "octocat/hello", "main")
	rec := doRequest(s, webhookRequest(payload, signPayload(payload, testWebhookSecret)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	s.WaitDetached()
	m.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
