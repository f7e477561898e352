package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/db"
	"github.com/stretchr/testify/mock"
)

func TestHandleGetSettings(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.settings.On("GetUserSettings", mock.Anything, "user-1").
		Return(&common.UserSettings{
			UserID:             "user-1",
			DiscordWebhook:     "https://discord.example.com/hook",
			EmailNotifications: true,
		}, nil)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/user/settings?userId=user-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	var got settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unexpected error occured, err=%+v", err)
	}
	if got.DiscordWebhook != "https://discord.example.com/hook" || !got.EmailNotifications {
		t.Fatalf("Unexpected response: %+v", got)
	}
}

func TestHandleGetSettingsNoRow(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.settings.On("GetUserSettings", mock.Anything, "user-2").Return(nil, db.ErrNotFound)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/user/settings?userId=user-2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	var got settingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unexpected error occured, err=%+v", err)
	}
	if got.DiscordWebhook != "" || got.SlackWebhook != "" || got.EmailNotifications {
		t.Fatalf("Unexpected response: %+v", got)
	}
}

func TestHandleGetSettingsMissingUserID(t *testing.T) {
	s, _ := newTestServer(t, testAppURL)
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/user/settings", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSaveSettings(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	m.settings.On("UpsertUserSettings", mock.Anything, &common.UserSettings{
		UserID:             "user-1",
		SlackWebhook:       "https://hooks.slack.example.com/x",
		EmailNotifications: false,
	}).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/user/settings",
		strings.NewReader(`{"userId":"user-1","slackWebhook":"https://hooks.slack.example.com/x"}`))
	rec := doRequest(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	m.settings.AssertExpectations(t)
}

func TestHandleSaveSettingsMissingUserID(t *testing.T) {
	s, m := newTestServer(t, testAppURL)
	req := httptest.NewRequest(http.MethodPost, "/api/user/settings",
		strings.NewReader(`{"discordWebhook":"https://discord.example.com/hook"}`))
	rec := doRequest(s, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Unexpected status: got=%d, body=%s", rec.Code, rec.Body.String())
	}
	m.settings.AssertNotCalled(t, "UpsertUserSettings", mock.Anything, mock.Anything)
}
