package cli

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		want       bool
		wantOutput []string
	}{
		{name: "y answers yes", input: "y\n", want: true},
		{name: "yes answers yes", input: "yes\n", want: true},
		{name: "uppercase Y answers yes", input: "Y\n", want: true},
		{name: "n answers no", input: "n\n", want: false},
		{name: "no answers no", input: "no\n", want: false},
		{name: "empty line defaults to no", input: "\n", want: false},
		{name: "whitespace defaults to no", input: "   \n", want: false},
		{
			name:       "invalid answer re-prompts",
			input:      "maybe\ny\n",
			want:       true,
			wantOutput: []string{"Please answer with 'y' or 'n' (or 'yes' or 'no')."},
		},
		{
			name:       "closed input cancels",
			input:      "",
			want:       false,
			wantOutput: []string{"Operation cancelled by user."},
		},
		{name: "partial line without newline still counts", input: "y", want: true},
		{
			name:       "invalid answer then closed input cancels",
			input:      "what\n",
			want:       false,
			wantOutput: []string{"Please answer", "Operation cancelled by user."},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Do you want to re-process 'Lecture 1.mp4'?")

			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Do you want to re-process 'Lecture 1.mp4'? [y/N]: ") {
				t.Errorf("output missing prompt, got %q", out.String())
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q, got %q", want, out.String())
				}
			}
		})
	}
}
