package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/sumire/hess/internal/apierr"
)

// ParseBody decodes raw as a single JSON object. Numbers are kept as json.Number.
func ParseBody(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, invalidBody()
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, invalidBody()
	}

	body, ok := v.(map[string]any)
	if !ok {
		return nil, invalidBody()
	}
	return body, nil
}

func invalidBody() error {
	return apierr.BodyValidationErrors(apierr.ValidationErrors{apierr.InvalidJSONBody()})
}
