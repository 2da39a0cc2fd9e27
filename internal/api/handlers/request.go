package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ScanRequest starts a scan. An empty symbol list scans the configured
// universe.
type ScanRequest struct {
	Symbols []string `json:"symbols" validate:"omitempty,max=500,dive,required,max=16"`
	TopN    int      `json:"top_n" default:"10" validate:"min=1,max=100"`
}

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RequestError is returned for malformed or invalid bodies
type RequestError struct {
	Message string       `json:"error"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *RequestError) Error() string {
	return e.Message
}

// decodeRequest reads JSON into req, applies defaults and validates it.
// An empty body is treated as {}.
func decodeRequest(r *http.Request, req interface{}) error {
	if r.Body != nil {
		err := json.NewDecoder(r.Body).Decode(req)
		if err != nil && !errors.Is(err, io.EOF) {
			return &RequestError{Message: "Invalid request body"}
		}
	}

	return validateRequest(r.Context(), req)
}

// validateRequest fills zero fields from `default` tags, then validates
func validateRequest(ctx context.Context, req interface{}) error {
	if err := defaults.Set(req); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}

	if err := validate.StructCtx(ctx, req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		out := &RequestError{Message: "Validation failed"}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{
				Field:   fe.Namespace(),
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Message: fmt.Sprintf("failed on %q", fe.Tag()),
			})
		}
		return out
	}
	return nil
}

func respondRequestError(w http.ResponseWriter, err error) {
	var re *RequestError
	if errors.As(err, &re) {
		respondJSON(w, http.StatusBadRequest, re)
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive: %d", n)
	}
	return n, nil
}
