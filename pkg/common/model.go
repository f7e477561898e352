package common

import "time"

// TreeEntry is one node of the repository tree snapshot captured at scan time.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "directory"
}

// Issue is a single validated vulnerability produced by the explainer stage.
type Issue struct {
	Title   string `json:"title"`
	Problem string `json:"problem"`
	Fix     string `json:"fix"`
	File    string `json:"file,omitempty"`
}

// ScanResult is the outcome of one pipeline run. ScanID is empty when the
// record could not be persisted.
type ScanResult struct {
	Issues []Issue     `json:"issues"`
	Tree   []TreeEntry `json:"tree"`
	ScanID string      `json:"scanId,omitempty"`
}

// Scan entity
type Scan struct {
	ScanID    string
	UserID    string
	RepoName  string
	RepoURL   string
	Status    string
	Results   string // JSON document, {"issues":[...]} (legacy rows may use "results")
	IsPublic  bool
	ShareSlug string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonitoredRepo entity
type MonitoredRepo struct {
	UserID        string
	RepoFullName  string
	WebhookID     string
	WebhookSecret string
	GithubToken   string // AES-CBC encrypted, base64
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserSettings entity
type UserSettings struct {
	UserID             string
	DiscordWebhook     string
	SlackWebhook       string
	EmailNotifications bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// User entity
type User struct {
	UserID string
	Email  string
	Name   string
	Image  string
}
