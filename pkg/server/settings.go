package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/db"
)

type settingsResponse struct {
	DiscordWebhook     string `json:"discordWebhook"`
	SlackWebhook       string `json:"slackWebhook"`
	EmailNotifications bool   `json:"emailNotifications"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	settings, err := s.settingsRepo.GetUserSettings(r.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// No row yet is not an error: the owner simply has not saved
			// preferences, so every channel reads as unconfigured.
			writeJSON(w, http.StatusOK, settingsResponse{})
			return
		}
		s.logger.Errorf(r.Context(), "Failed to get user settings: user_id=%s, err=%+v", userID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		DiscordWebhook:     settings.DiscordWebhook,
		SlackWebhook:       settings.SlackWebhook,
		EmailNotifications: settings.EmailNotifications,
	})
}

type saveSettingsRequest struct {
	UserID             string `json:"userId"`
	DiscordWebhook     string `json:"discordWebhook"`
	SlackWebhook       string `json:"slackWebhook"`
	EmailNotifications bool   `json:"emailNotifications"`
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.settingsRepo.UpsertUserSettings(r.Context(), &common.UserSettings{
		UserID:             req.UserID,
		DiscordWebhook:     req.DiscordWebhook,
		SlackWebhook:       req.SlackWebhook,
		EmailNotifications: req.EmailNotifications,
	}); err != nil {
		s.logger.Errorf(r.Context(), "Failed to save user settings: user_id=%s, err=%+v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
