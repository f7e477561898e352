package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer valid-token" {
			http.Error(w, `{"message":"invalid JWT"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":"user-1","email":"dev@example.com","user_metadata":{"full_name":"Dev Example","avatar_url":"https://example.com/a.png"}}`)
	}))
	defer srv.Close()
	c := NewSessionClient(srv.URL, "anon-key", 5*time.Second)

	got, err := c.VerifyToken(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("Unexpected error occured, err=%+v", err)
	}
	if got.ID != "user-1" || got.Name != "Dev Example" {
		t.Fatalf("Unexpected user: %+v", got)
	}

	if _, err := c.VerifyToken(context.Background(), "wrong-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if _, err := c.VerifyToken(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Unexpected error: %+v", err)
	}
}

func TestVerifyTokenNameFallback(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantName string
	}{
		{
			name:     "Full name preferred",
			body:     `{"id":"u","email":"e@example.com","user_metadata":{"full_name":"Full","name":"Short"}}`,
			wantName: "Full",
		},
		{
			name:     "Name when no full name",
			body:     `{"id":"u","email":"e@example.com","user_metadata":{"name":"Short"}}`,
			wantName: "Short",
		},
		{
			name:     "Email as last resort",
			body:     `{"id":"u","email":"e@example.com","user_metadata":{}}`,
			wantName: "e@example.com",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, c.body)
			}))
			defer srv.Close()
			client := NewSessionClient(srv.URL, "", 5*time.Second)
			got, err := client.VerifyToken(context.Background(), "token")
			if err != nil {
				t.Fatalf("Unexpected error occured, err=%+v", err)
			}
			if got.Name != c.wantName {
				t.Fatalf("Unexpected not matching: want=%s, got=%s", c.wantName, got.Name)
			}
		})
	}
}
