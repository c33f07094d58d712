package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question on w and reads the answer from r.
// Empty input means no. Unrecognized answers re-prompt. A closed or
// failing reader counts as a cancel and answers no.
func Confirm(r io.Reader, w io.Writer, message string) bool {
	reader := bufio.NewReader(r)
	for {
		fmt.Fprintf(w, "%s [y/N]: ", message)

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w, "\nOperation cancelled by user.")
			return false
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no", "":
			return false
		default:
			fmt.Fprintln(w, "Please answer with 'y' or 'n' (or 'yes' or 'no').")
		}
	}
}
