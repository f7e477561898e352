package db

import (
	"encoding/json"

	"github.com/shipsafe/cyberwatch/pkg/common"
)

// IssuesFromResults normalizes a persisted results document into an issue
// list. Historical rows stored the list under "results" instead of "issues";
// this read-boundary adapter is the only place that knows about the legacy
// shape. Malformed documents yield an empty list, never an error, so
// derived surfaces (the badge) stay total.
func IssuesFromResults(results string) []common.Issue {
	var doc struct {
		Issues  []common.Issue `json:"issues"`
		Results []common.Issue `json:"results"`
	}
	if err := json.Unmarshal([]byte(results), &doc); err != nil {
		return []common.Issue{}
	}
	if doc.Issues != nil {
		return doc.Issues
	}
	if doc.Results != nil {
		return doc.Results
	}
	return []common.Issue{}
}
