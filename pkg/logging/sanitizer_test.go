package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		mustContain string
		mustNotHave string
	}{
		{
			name:        "nil error",
			err:         nil,
			mustContain: "",
		},
		{
			name:        "password in message",
			err:         errors.New("connect failed: password=hunter2 host=db"),
			mustContain: "password=" + RedactedText,
			mustNotHave: "hunter2",
		},
		{
			name:        "connection string credentials",
			err:         errors.New("dial postgres://user:secret@db:5432/app: refused"),
			mustContain: RedactedText,
			mustNotHave: "secret",
		},
		{
			name:        "clean message unchanged",
			err:         errors.New("no rows in result set"),
			mustContain: "no rows in result set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			if tt.mustContain != "" && !strings.Contains(got, tt.mustContain) {
				t.Errorf("%q should contain %q", got, tt.mustContain)
			}
			if tt.mustNotHave != "" && strings.Contains(got, tt.mustNotHave) {
				t.Errorf("%q should not contain %q", got, tt.mustNotHave)
			}
		})
	}
}

func TestSanitizeQuery(t *testing.T) {
	if got := SanitizeQuery(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}

	long := strings.Repeat("SELECT * FROM t; ", 20)
	got := SanitizeQuery(long)
	if len(got) != MaxQueryLogLength+len("...") {
		t.Errorf("got length %d, want truncation to %d plus ellipsis", len(got), MaxQueryLogLength)
	}

	short := "SELECT 1"
	if got := SanitizeQuery(short); got != short {
		t.Errorf("got %q, want unchanged", got)
	}
}
