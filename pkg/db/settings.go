package db

import (
	"context"

	"github.com/shipsafe/cyberwatch/pkg/common"
)

// UserSettingsRepository stores notification preferences, one row per owner.
// Saves replace the whole row; callers supply the full desired state.
type UserSettingsRepository interface {
	UpsertUserSettings(ctx context.Context, data *common.UserSettings) error
	GetUserSettings(ctx context.Context, userID string) (*common.UserSettings, error)
}

const upsertUserSettings = `
INSERT INTO user_settings (user_id, discord_webhook, slack_webhook, email_notifications)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	discord_webhook=VALUES(discord_webhook),
	slack_webhook=VALUES(slack_webhook),
	email_notifications=VALUES(email_notifications)
`

func (c *Client) UpsertUserSettings(ctx context.Context, data *common.UserSettings) error {
	return c.DB.WithContext(ctx).Exec(upsertUserSettings,
		data.UserID,
		data.DiscordWebhook,
		data.SlackWebhook,
		data.EmailNotifications,
	).Error
}

const selectUserSettings = `select * from user_settings where user_id = ? limit 1`

func (c *Client) GetUserSettings(ctx context.Context, userID string) (*common.UserSettings, error) {
	data := common.UserSettings{}
	result := c.DB.WithContext(ctx).Raw(selectUserSettings, userID).Scan(&data)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &data, nil
}
