package db

import (
	"context"

	"github.com/shipsafe/cyberwatch/pkg/common"
)

// MonitoredRepoRepository holds the registry of webhook-enrolled
// repositories. One record per repository per owner; repeated enrollment
// upserts with last-write-wins. Deactivation is the only lifecycle
// end-state, records are never deleted.
type MonitoredRepoRepository interface {
	UpsertMonitoredRepo(ctx context.Context, data *common.MonitoredRepo) error
	GetActiveMonitoredRepo(ctx context.Context, repoFullName string) (*common.MonitoredRepo, error)
	UpdateMonitoredRepoActive(ctx context.Context, userID, repoFullName string, active bool) error
}

const upsertMonitoredRepo = `
INSERT INTO monitored_repo (user_id, repo_full_name, webhook_id, webhook_secret, github_token, active)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	webhook_id=VALUES(webhook_id),
	webhook_secret=VALUES(webhook_secret),
	github_token=VALUES(github_token),
	active=VALUES(active)
`

func (c *Client) UpsertMonitoredRepo(ctx context.Context, data *common.MonitoredRepo) error {
	return c.DB.WithContext(ctx).Exec(upsertMonitoredRepo,
		data.UserID,
		data.RepoFullName,
		data.WebhookID,
		data.WebhookSecret,
		data.GithubToken,
		data.Active,
	).Error
}

const selectActiveMonitoredRepo = `select * from monitored_repo where repo_full_name = ? and active = true limit 1`

func (c *Client) GetActiveMonitoredRepo(ctx context.Context, repoFullName string) (*common.MonitoredRepo, error) {
	data := common.MonitoredRepo{}
	result := c.DB.WithContext(ctx).Raw(selectActiveMonitoredRepo, repoFullName).Scan(&data)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &data, nil
}

const updateMonitoredRepoActive = `update monitored_repo set active = ? where user_id = ? and repo_full_name = ?`

func (c *Client) UpdateMonitoredRepoActive(ctx context.Context, userID, repoFullName string, active bool) error {
	return c.DB.WithContext(ctx).Exec(updateMonitoredRepoActive, active, userID, repoFullName).Error
}
