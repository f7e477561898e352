package common

import (
	"fmt"
	"strings"
)

// SplitRepoFullName splits "owner/repo" into its two parts.
func SplitRepoFullName(fullName string) (string, string, error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name format: %s, expected 'owner/repo'", fullName)
	}
	return parts[0], parts[1], nil
}

func CutString(input string, cut int) string {
	if len(input) > cut {
		return input[:cut] + " ..." // cut long text
	}
	return input
}
