// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/shashiranjanraj/paintpos/config"
)

// maxBodyBytes returns the configured request body size limit (default 1 MB).
func maxBodyBytes() int64 {
	n := config.Int("MAX_BODY_BYTES", 1<<20)
	if n <= 0 {
		return 1 << 20
	}
	return int64(n)
}

// JSON decodes r.Body as JSON into dest and, when dest implements
// validation.Validatable, validates it.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if v, ok := dest.(validation.Validatable); ok {
		return Errors(v.Validate()), nil
	}
	return nil, nil
}

// Errors flattens an ozzo validation error into field → message. Nested
// errors (slice elements, embedded structs) use dotted keys such as
// "items.0.qty". Any other error is reported under "error". A nil error
// returns a nil map.
func Errors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := map[string]string{}
	flatten("", err, out)
	return out
}

func flatten(prefix string, err error, out map[string]string) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		key := prefix
		if key == "" {
			key = "error"
		}
		out[key] = err.Error()
		return
	}
	for field, fe := range verrs {
		if fe == nil {
			continue
		}
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		flatten(key, fe, out)
	}
}
