package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-stepgate/core"
)

const (
	InvalidJSONMessage     = "Invalid JSON"
	PayloadTooLargeMessage = "Payload Too Large"
)

const DefaultMaxBodyBytes int64 = 5 << 20

type bodyDecoder struct {
	limit int64
}

func newBodyDecoder(limit int64) bodyDecoder {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return bodyDecoder{limit: limit}
}

func (d bodyDecoder) read(r *http.Request) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, d.limit+1))
	if err != nil {
		return nil, core.BadInput(InvalidJSONMessage)
	}
	if int64(len(body)) > d.limit {
		return nil, goerrors.New(PayloadTooLargeMessage, goerrors.CategoryBadInput).
			WithCode(http.StatusRequestEntityTooLarge).
			WithTextCode(core.GatewayErrorBadInput)
	}
	return body, nil
}

// decode reads the body into dst; anything that is not JSON of the right
// shape is a 400 "Invalid JSON".
func (d bodyDecoder) decode(r *http.Request, dst any) error {
	body, err := d.read(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return core.BadInput(InvalidJSONMessage)
	}
	return nil
}

// jsonString reports whether raw holds a JSON string.
func jsonString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return "", false
	}
	return value, true
}

// jsonNumber reports whether raw holds a JSON number.
func jsonNumber(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if first := trimmed[0]; first != '-' && (first < '0' || first > '9') {
		return 0, false
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, false
	}
	return value, true
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
