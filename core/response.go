package core

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const (
	ContentTypeText = "text/plain;charset=UTF-8"
	ContentTypeJSON = "application/json"
)

// Response is a fully buffered reply. Services build one and the router
// decorates it with the cross-origin headers before writing.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func Text(status int, body string) *Response {
	res := &Response{Status: status, Header: http.Header{}, Body: []byte(body)}
	res.Header.Set("Content-Type", ContentTypeText)
	return res
}

// JSON encodes value the way JSON.stringify would: no trailing newline and no
// HTML escaping.
func JSON(status int, value any) (*Response, error) {
	body, err := marshalJSON(value)
	if err != nil {
		return nil, err
	}
	return RawJSON(status, body), nil
}

func RawJSON(status int, body []byte) *Response {
	res := &Response{Status: status, Header: http.Header{}, Body: append([]byte(nil), body...)}
	res.Header.Set("Content-Type", ContentTypeJSON)
	return res
}

func Empty(status int) *Response {
	return &Response{Status: status, Header: http.Header{}}
}

func Redirect(location string, status int) *Response {
	res := Empty(status)
	res.Header.Set("Location", location)
	return res
}

func (r *Response) write(w http.ResponseWriter) {
	if r == nil {
		return
	}
	header := w.Header()
	for key, values := range r.Header {
		header[key] = append([]string(nil), values...)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 && status != http.StatusNoContent && status != http.StatusNotModified {
		_, _ = w.Write(r.Body)
	}
}

func marshalJSON(value any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}
