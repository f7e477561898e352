package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsRecoverable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "Recoverable rate limit",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			want: true,
		},
		{
			name: "Recoverable bad request",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			want: true,
		},
		{
			name: "Recoverable wrapped",
			err:  fmt.Errorf("completion request failed: err=%w", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}),
			want: true,
		},
		{
			name: "Fatal server error",
			err:  &openai.APIError{HTTPStatusCode: http.StatusInternalServerError},
			want: false,
		},
		{
			name: "Fatal request error",
			err:  &openai.RequestError{HTTPStatusCode: http.StatusBadGateway},
			want: false,
		},
		{
			name: "Fatal plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "Fatal nil",
			err:  nil,
			want: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsRecoverable(c.err); got != c.want {
				t.Fatalf("Unexpected not matching: want=%t, got=%t", c.want, got)
			}
		})
	}
}
