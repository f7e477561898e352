// Package scanner drives the five-stage analysis pipeline: classify the
// repository tree, detect risks in relevant files, analyze dependency
// manifests, validate and explain via the high-capability tier, persist.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ca-risken/common/pkg/logging"
	"github.com/shipsafe/cyberwatch/pkg/common"
	"github.com/shipsafe/cyberwatch/pkg/db"
	"github.com/shipsafe/cyberwatch/pkg/github"
	"github.com/shipsafe/cyberwatch/pkg/llm"
	"github.com/shipsafe/cyberwatch/pkg/prompts"
)

const (
	defaultLocale = "en"

	// minAnalysisLength discards near-empty dependency analyses ("none",
	// "N/A") before they pollute the raw-risk document.
	minAnalysisLength = 10
)

type Config struct {
	// StageModel runs the cheap per-file stages (classify, detect, SCA).
	StageModel string
	// ExplainerModel is the high-capability tier for validation+explanation.
	ExplainerModel string
	// FallbackModel takes one retry when the explainer tier is rate-limited
	// or rejects the request.
	FallbackModel string
	// MaxDetectFiles caps deep detection to bound cost and latency.
	MaxDetectFiles int
	// MaxFileContentSize truncates file content sent to the detector.
	MaxFileContentSize int
}

// Runner executes one scan. Implemented by Scanner; the webhook and HTTP
// layers depend on this interface so tests can substitute the pipeline.
type Runner interface {
	Run(ctx context.Context, repoFullName, token, userID, locale string) (*common.ScanResult, error)
}

type Scanner struct {
	githubClient github.RepositoryClient
	llmClient    llm.CompletionClient
	scanRepo     db.ScanRepository
	conf         *Config
	logger       logging.Logger
}

func NewScanner(
	githubClient github.RepositoryClient,
	llmClient llm.CompletionClient,
	scanRepo db.ScanRepository,
	conf *Config,
	logger logging.Logger,
) *Scanner {
	return &Scanner{
		githubClient: githubClient,
		llmClient:    llmClient,
		scanRepo:     scanRepo,
		conf:         conf,
		logger:       logger,
	}
}

// Run executes the pipeline for one repository. The five stages are strictly
// sequential; per-file failures in the detection and dependency stages are
// isolated, a persistence failure still returns the computed result.
func (s *Scanner) Run(ctx context.Context, repoFullName, token, userID, locale string) (*common.ScanResult, error) {
	owner, repoName, err := common.SplitRepoFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = defaultLocale
	}

	// 1. Classify
	tree, err := s.githubClient.ListTree(ctx, token, owner, repoName)
	if err != nil {
		return nil, fmt.Errorf("failed to list repository tree: repository=%s, err=%w", repoFullName, err)
	}
	relevantFiles, err := s.classify(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("classification stage failed: repository=%s, err=%w", repoFullName, err)
	}
	s.logger.Infof(ctx, "Classified repository, repository=%s, tree_size=%d, relevant_files=%d", repoFullName, len(tree), len(relevantFiles))

	// 2. Detect
	artifacts := []string{}
	detectTargets := relevantFiles
	if len(detectTargets) > s.conf.MaxDetectFiles {
		detectTargets = detectTargets[:s.conf.MaxDetectFiles]
	}
	for _, filePath := range detectTargets {
		analysis, err := s.analyzeFile(ctx, token, owner, repoName, filePath, prompts.Detector)
		if err != nil {
			s.logger.Warnf(ctx, "Failed to analyze file, skipped: repository=%s, path=%s, err=%+v", repoFullName, filePath, err)
			continue
		}
		artifacts = append(artifacts, formatArtifact(filePath, analysis))
	}

	// 3. Dependency analysis (SCA), over the full relevant set, uncapped
	for _, depFile := range filterDependencyManifests(relevantFiles) {
		analysis, err := s.analyzeFile(ctx, token, owner, repoName, depFile, prompts.DependencyAnalyzer)
		if err != nil {
			s.logger.Warnf(ctx, "Failed to analyze dependency file, skipped: repository=%s, path=%s, err=%+v", repoFullName, depFile, err)
			continue
		}
		if len(analysis) <= minAnalysisLength {
			continue
		}
		artifacts = append(artifacts, formatArtifact(depFile, analysis))
	}

	// 4. Validate & explain
	issues, err := s.explain(ctx, strings.Join(artifacts, "\n"), locale)
	if err != nil {
		return nil, fmt.Errorf("explanation stage failed: repository=%s, err=%w", repoFullName, err)
	}

	// 5. Persist. Failure is logged but the computed result is still
	// returned: analysis value is not discarded because storage failed.
	result := &common.ScanResult{Issues: issues, Tree: tree}
	scan, err := s.scanRepo.InsertScan(ctx, userID, repoFullName, issues)
	if err != nil {
		s.logger.Errorf(ctx, "Failed to store scan result, returning unsaved result: repository=%s, err=%+v", repoFullName, err)
	} else {
		result.ScanID = scan.ScanID
	}
	return result, nil
}

func (s *Scanner) classify(ctx context.Context, tree []common.TreeEntry) ([]string, error) {
	paths := make([]string, 0, len(tree))
	for _, e := range tree {
		paths = append(paths, e.Path)
	}
	instruction := prompts.Classifier + "\n\nIMPORTANT: ALSO IDENTIFY DEPENDENCY FILES (package.json, requirements.txt, go.mod, pom.xml, gemfile) and include them in RELEVANT_FILES."
	classification, err := s.llmClient.Complete(ctx, s.conf.StageModel, instruction, fmt.Sprintf("File list:\n%s", strings.Join(paths, "\n")))
	if err != nil {
		return nil, err
	}
	return ParseRelevantFiles(classification), nil
}

func (s *Scanner) analyzeFile(ctx context.Context, token, owner, repo, path, instruction string) (string, error) {
	content, err := s.githubClient.GetFileContent(ctx, token, owner, repo, path)
	if err != nil {
		return "", err
	}
	if s.conf.MaxFileContentSize > 0 {
		content = common.CutString(content, s.conf.MaxFileContentSize)
	}
	return s.llmClient.Complete(ctx, s.conf.StageModel, instruction, fmt.Sprintf("File: %s\n\nContent:\n%s", path, content))
}

func formatArtifact(path, analysis string) string {
	return fmt.Sprintf("File: %s\nAnalysis:\n%s", path, analysis)
}

// explain sends the raw-risk document to the high-capability tier, retrying
// exactly once on the fallback tier for rate-limit/bad-request errors. The
// contract requires valid JSON back; a parse failure is fatal.
func (s *Scanner) explain(ctx context.Context, rawRisks, locale string) ([]common.Issue, error) {
	instruction := fmt.Sprintf("%s\n\nIMPORTANT: Use %s for all explanations and titles.", prompts.Explainer, locale)
	content := fmt.Sprintf("Risks found:\n%s", rawRisks)

	out, err := s.llmClient.CompleteJSON(ctx, s.conf.ExplainerModel, instruction, content)
	if err != nil {
		if !llm.IsRecoverable(err) {
			return nil, err
		}
		s.logger.Warnf(ctx, "Explainer tier unavailable, retrying on fallback tier: model=%s, fallback=%s, err=%+v", s.conf.ExplainerModel, s.conf.FallbackModel, err)
		out, err = s.llmClient.CompleteJSON(ctx, s.conf.FallbackModel, instruction, content)
		if err != nil {
			return nil, err
		}
	}
	var parsed struct {
		Issues []common.Issue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("explainer returned invalid JSON: err=%w", err)
	}
	if parsed.Issues == nil {
		parsed.Issues = []common.Issue{}
	}
	return parsed.Issues, nil
}
