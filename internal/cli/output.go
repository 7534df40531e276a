package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// render writes either the text rendering or the JSON envelope,
// depending on the selected format.
func render(w io.Writer, opts *RootOptions, data any, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	text(w)
	return nil
}

// renderError writes an error in the selected format and returns the
// error unchanged so cobra reports a non-zero exit.
func renderError(w io.Writer, opts *RootOptions, err error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(Response{Status: "error", Error: err.Error()})
		return err
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return err
}
