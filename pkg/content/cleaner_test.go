package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tags and entity", in: "<b>A &amp; B</b>", want: "A & B"},
		{name: "numeric entity", in: "caf&#233; &#x26; bar", want: "café & bar"},
		{name: "escaped markup is stripped after decoding", in: "&lt;i&gt;x&lt;/i&gt;", want: "x"},
		{name: "whitespace trimmed", in: "  <p> padded </p>\n", want: "padded"},
		{name: "plain text unchanged", in: "already clean text", want: "already clean text"},
		{name: "tag split across lines leaks", in: "a <span\nclass=\"x\">b</span>", want: "a <span\nclass=\"x\">b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	for _, in := range []string{"A & B", "plain words", "café com leite", ""} {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), in)
	}
}
