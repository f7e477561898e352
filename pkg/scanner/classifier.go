package scanner

import (
	"regexp"
	"strings"
)

// The classifier answers in semi-structured text; the relevant-file set is
// extracted with a strict line pattern. No match means an empty set, never
// an error: the scan proceeds and yields zero issues.
var relevantFilesPattern = regexp.MustCompile(`RELEVANT_FILES: (.*)`)

func ParseRelevantFiles(classification string) []string {
	match := relevantFilesPattern.FindStringSubmatch(classification)
	if match == nil {
		return []string{}
	}
	files := []string{}
	for _, f := range strings.Split(match[1], ",") {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			files = append(files, trimmed)
		}
	}
	return files
}

var dependencyManifests = []string{
	"package.json",
	"requirements.txt",
	"go.mod",
	"pom.xml",
	"Gemfile",
}

func IsDependencyManifest(path string) bool {
	for _, m := range dependencyManifests {
		if strings.HasSuffix(path, m) {
			return true
		}
	}
	return false
}

func filterDependencyManifests(paths []string) []string {
	manifests := []string{}
	for _, p := range paths {
		if IsDependencyManifest(p) {
			manifests = append(manifests, p)
		}
	}
	return manifests
}
