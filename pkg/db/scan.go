package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shipsafe/cyberwatch/pkg/common"
)

// shareSlugBytes is the entropy of a public share token. 20 random bytes,
// hex-encoded, so slugs are not enumerable.
const shareSlugBytes = 20

const scanStatusCompleted = "completed"

// ScanRepository persists completed scans. Every scan is an independent,
// append-only record; there is no "latest record" mutation beyond ordering
// by creation time.
type ScanRepository interface {
	InsertScan(ctx context.Context, userID, repoFullName string, issues []common.Issue) (*common.Scan, error)
	GetScan(ctx context.Context, scanID string) (*common.Scan, error)
	UpdateScanVisibility(ctx context.Context, scanID string, isPublic bool) (*common.Scan, error)
	DeleteScan(ctx context.Context, scanID string) error
	GetScanByShareSlug(ctx context.Context, slug string) (*common.Scan, error)
	GetLatestScanByRepoName(ctx context.Context, repoName string) (*common.Scan, error)
}

const insertScan = `
INSERT INTO scan (scan_id, user_id, repo_name, repo_url, status, results, is_public, share_slug)
VALUES (?, ?, ?, ?, ?, ?, false, '')
`

func (c *Client) InsertScan(ctx context.Context, userID, repoFullName string, issues []common.Issue) (*common.Scan, error) {
	_, repoName, err := common.SplitRepoFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []common.Issue{}
	}
	results, err := json.Marshal(map[string][]common.Issue{"issues": issues})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: err=%w", err)
	}
	scanID := uuid.NewString()
	repoURL := fmt.Sprintf("https://github.com/%s", repoFullName)
	if err := c.DB.WithContext(ctx).Exec(insertScan,
		scanID, userID, repoName, repoURL, scanStatusCompleted, string(results)).Error; err != nil {
		return nil, err
	}
	return c.GetScan(ctx, scanID)
}

const selectGetScan = `select * from scan where scan_id = ?`

func (c *Client) GetScan(ctx context.Context, scanID string) (*common.Scan, error) {
	data := common.Scan{}
	result := c.DB.WithContext(ctx).Raw(selectGetScan, scanID).Scan(&data)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &data, nil
}

const updateScanVisibility = `update scan set is_public = ?, share_slug = ? where scan_id = ?`

// UpdateScanVisibility toggles public sharing. Enabling always issues a fresh
// slug so links invalidated by a previous toggle-off never come back to life.
func (c *Client) UpdateScanVisibility(ctx context.Context, scanID string, isPublic bool) (*common.Scan, error) {
	slug := ""
	if isPublic {
		var err error
		slug, err = generateShareSlug()
		if err != nil {
			return nil, err
		}
	}
	result := c.DB.WithContext(ctx).Exec(updateScanVisibility, isPublic, slug, scanID)
	if result.Error != nil {
		return nil, result.Error
	}
	return c.GetScan(ctx, scanID)
}

const deleteScan = `delete from scan where scan_id = ?`

// DeleteScan is a hard delete. Deleting an already-removed record is not an
// error; the second call simply finds nothing to remove.
func (c *Client) DeleteScan(ctx context.Context, scanID string) error {
	return c.DB.WithContext(ctx).Exec(deleteScan, scanID).Error
}

const selectGetScanByShareSlug = `select * from scan where share_slug = ? and is_public = true`

func (c *Client) GetScanByShareSlug(ctx context.Context, slug string) (*common.Scan, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	data := common.Scan{}
	result := c.DB.WithContext(ctx).Raw(selectGetScanByShareSlug, slug).Scan(&data)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &data, nil
}

const selectLatestScanByRepoName = `select * from scan where repo_name = ? order by created_at desc limit 1`

func (c *Client) GetLatestScanByRepoName(ctx context.Context, repoName string) (*common.Scan, error) {
	data := common.Scan{}
	result := c.DB.WithContext(ctx).Raw(selectLatestScanByRepoName, repoName).Scan(&data)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &data, nil
}

func generateShareSlug() (string, error) {
	buf := make([]byte, shareSlugBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share slug: err=%w", err)
	}
	return hex.EncodeToString(buf), nil
}
