package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ca-risken/common/pkg/logging"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v44/github"
	"github.com/shipsafe/cyberwatch/pkg/common"
	"golang.org/x/oauth2"
)

const (
	RETRY_NUM uint64 = 3

	defaultBranch  = "main"
	fallbackBranch = "master"

	treeTypeBlob = "blob"
	treeTypeTree = "tree"
)

// RepositoryClient is the gateway to the source-hosting provider. All calls
// use the caller-supplied token; the gateway holds no credential of its own.
type RepositoryClient interface {
	// ListTree returns the recursive file tree of the repository. It tries
	// the main branch first and falls back to master; when both fail it
	// returns an empty tree and no error, which the pipeline treats as "no
	// relevant files found".
	ListTree(ctx context.Context, token, owner, repo string) ([]common.TreeEntry, error)
	// GetFileContent fetches one file and returns its decoded UTF-8 text.
	// No retry; failures are isolated per file by the caller.
	GetFileContent(ctx context.Context, token, owner, repo, path string) (string, error)
	// CreateWebhook registers a push-event JSON webhook and returns the
	// provider's hook identifier.
	CreateWebhook(ctx context.Context, token, owner, repo, hookURL, secret string) (string, error)
}

type GitHubV3Client struct {
	*github.Client
}

type githubClient struct {
	baseURL string
	timeout time.Duration
	retryer backoff.BackOff
	logger  logging.Logger
}

func NewGithubClient(baseURL string, timeout time.Duration, logger logging.Logger) RepositoryClient {
	return &githubClient{
		baseURL: baseURL,
		timeout: timeout,
		retryer: backoff.WithMaxRetries(backoff.NewExponentialBackOff(), RETRY_NUM),
		logger:  logger,
	}
}

func (g *githubClient) newV3Client(ctx context.Context, token string) (*GitHubV3Client, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))
	client := github.NewClient(httpClient)
	if g.baseURL != "" { // Default: "https://api.github.com/"
		u, err := url.Parse(g.baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}
	return &GitHubV3Client{Client: client}, nil
}

func (g *githubClient) ListTree(ctx context.Context, token, owner, repo string) ([]common.TreeEntry, error) {
	client, err := g.newV3Client(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("create github-v3 client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	entries, err := g.getTree(ctx, client, owner, repo, defaultBranch)
	if err != nil {
		g.logger.Warnf(ctx, "Failed to get tree, try %s branch: repository=%s/%s, err=%+v", fallbackBranch, owner, repo, err)
		entries, err = g.getTree(ctx, client, owner, repo, fallbackBranch)
		if err != nil {
			// Both branches failed: report an empty tree so the scan
			// completes with zero relevant files.
			g.logger.Warnf(ctx, "Failed to get tree on both branches, return empty tree: repository=%s/%s, err=%+v", owner, repo, err)
			return []common.TreeEntry{}, nil
		}
	}
	return entries, nil
}

func (g *githubClient) getTree(ctx context.Context, client *GitHubV3Client, owner, repo, branch string) ([]common.TreeEntry, error) {
	tree, _, err := client.Git.GetTree(ctx, owner, repo, branch, true)
	if err != nil {
		return nil, err
	}
	entries := make([]common.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, common.TreeEntry{
			Path: e.GetPath(),
			Type: convertTreeEntryType(e.GetType()),
		})
	}
	g.logger.Debugf(ctx, "Success GitHub API for tree, repository=%s/%s, branch=%s, entry_count=%d", owner, repo, branch, len(entries))
	return entries, nil
}

func convertTreeEntryType(githubType string) string {
	switch githubType {
	case treeTypeBlob:
		return "file"
	case treeTypeTree:
		return "directory"
	default:
		return githubType
	}
}

func (g *githubClient) GetFileContent(ctx context.Context, token, owner, repo, path string) (string, error) {
	client, err := g.newV3Client(ctx, token)
	if err != nil {
		return "", fmt.Errorf("create github-v3 client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	fileContent, _, _, err := client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get contents: repository=%s/%s, path=%s, err=%w", owner, repo, path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("not a file: repository=%s/%s, path=%s", owner, repo, path)
	}
	// The contents API delivers base64-encoded data; GetContent decodes it.
	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode contents: repository=%s/%s, path=%s, err=%w", owner, repo, path, err)
	}
	return content, nil
}

func (g *githubClient) CreateWebhook(ctx context.Context, token, owner, repo, hookURL, secret string) (string, error) {
	client, err := g.newV3Client(ctx, token)
	if err != nil {
		return "", fmt.Errorf("create github-v3 client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	hook := &github.Hook{
		Active: github.Bool(true),
		Events: []string{"push"},
		Config: map[string]interface{}{
			"url":          hookURL,
			"content_type": "json",
			"secret":       secret,
			"insecure_ssl": "0",
		},
	}
	var created *github.Hook
	operation := func() error {
		var err error
		created, _, err = client.Repositories.CreateHook(ctx, owner, repo, hook)
		if err != nil {
			var ghErr *github.ErrorResponse
			// Client errors (hook exists, missing permission) never succeed on retry.
			if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}
	if err := backoff.RetryNotify(operation, g.retryer, g.newRetryLogger(ctx, "github create hook")); err != nil {
		return "", fmt.Errorf("failed to create webhook: repository=%s/%s, err=%w", owner, repo, err)
	}
	return strconv.FormatInt(created.GetID(), 10), nil
}

func (g *githubClient) newRetryLogger(ctx context.Context, funcName string) func(error, time.Duration) {
	return func(err error, ti time.Duration) {
		g.logger.Warnf(ctx, "[RetryLogger] %s error: duration=%+v, err=%+v", funcName, ti, err)
	}
}
