package common

import (
	"testing"
)

func TestSplitRepoFullName(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "OK",
			input:     "octocat/hello-world",
			wantOwner: "octocat",
			wantRepo:  "hello-world",
		},
		{
			name:    "NG no separator",
			input:   "octocat",
			wantErr: true,
		},
		{
			name:    "NG too many separators",
			input:   "octocat/hello/world",
			wantErr: true,
		},
		{
			name:    "NG empty owner",
			input:   "/hello-world",
			wantErr: true,
		},
		{
			name:    "NG empty repo",
			input:   "octocat/",
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			owner, repo, err := SplitRepoFullName(c.input)
			if c.wantErr && err == nil {
				t.Fatal("Unexpected no error")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("Unexpected error occured, err=%+v", err)
			}
			if owner != c.wantOwner || repo != c.wantRepo {
				t.Fatalf("Unexpected not matching: want=%s/%s, got=%s/%s", c.wantOwner, c.wantRepo, owner, repo)
			}
		})
	}
}

func TestCutString(t *testing.T) {
	cases := []struct {
		name  string
		input string
		cut   int
		want  string
	}{
		{
			name:  "Not cut",
			input: "short text",
			cut:   100,
			want:  "short text",
		},
		{
			name:  "Cut",
			input: "somewhat longer text",
			cut:   8,
			want:  "somewhat ...",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CutString(c.input, c.cut)
			if got != c.want {
				t.Fatalf("Unexpected not matching: want=%s, got=%s", c.want, got)
			}
		})
	}
}
