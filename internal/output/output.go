package output

import (
	"encoding/json"
	"fmt"
	"io"
)

type ErrorPayload struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Write(w io.Writer, asJSON bool, human string, payload any) error {
	if asJSON {
		return WriteJSON(w, payload)
	}
	_, err := fmt.Fprintln(w, human)
	return err
}

func WriteJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// WriteError prints p as JSON, or as an "Error: ..." line for humans.
func WriteError(w io.Writer, asJSON bool, p ErrorPayload) error {
	if asJSON {
		return WriteJSON(w, p)
	}
	_, err := fmt.Fprintln(w, "Error:", p.Message)
	return err
}

func NewErrorPayload(code, message string, details any) ErrorPayload {
	return ErrorPayload{
		OK:      false,
		Code:    code,
		Message: message,
		Details: details,
	}
}
