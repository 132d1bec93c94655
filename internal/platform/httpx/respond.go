// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/samber/lo"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = &shared.Error{Kind: shared.KindValidation, Message: "request body required"}

// ProblemDetail represents RFC7807 problem details plus the error kind.
type ProblemDetail struct {
	Success bool        `json:"success"`
	Kind    shared.Kind `json:"kind"`
	Title   string      `json:"title"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
}

// Envelope wraps successful payloads.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Data sends a success envelope.
func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// Problem sends a problem details response.
func Problem(w http.ResponseWriter, status int, kind shared.Kind, message string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Kind:    kind,
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

// DecodeJSON decodes a JSON request body into target. Unknown fields and
// trailing data are rejected as validation failures.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return shared.Errorf(shared.KindValidation, "malformed request body: %v", err)
	}
	if dec.More() {
		return shared.Errorf(shared.KindValidation, "request body must contain a single JSON object")
	}
	return nil
}

// DecodeOptionalJSON behaves like DecodeJSON but accepts an empty body.
func DecodeOptionalJSON(r *http.Request, target any) error {
	if err := DecodeJSON(r, target); err != nil && err != errEmptyBody {
		return err
	}
	return nil
}

// ValidationMessage joins field errors for the client.
func ValidationMessage(fields map[string]string) string {
	names := lo.Keys(fields)
	sort.Strings(names)
	msg := "validation failed"
	for _, name := range names {
		msg += fmt.Sprintf("; %s: %s", name, fields[name])
	}
	return msg
}
