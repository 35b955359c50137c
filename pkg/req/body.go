package req

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Messages reported for bodies that cannot be decoded.
const (
	MsgMissingContentType = "missing-content-type-header"
	MsgOnlyJSON           = "only-json-body-supported"
	MsgEmptyBody          = "empty-body"
	MsgInvalidJSON        = "invalid-json-body"
)

// BodyError is a malformed request body.
type BodyError struct {
	Message string
	Err     error
}

func (e *BodyError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *BodyError) Unwrap() error { return e.Err }

// ReadBody reads the whole request body. The stream is consumed completely
// before ReadBody returns.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, &BodyError{Message: MsgEmptyBody}
	}
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &BodyError{Message: MsgInvalidJSON, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, &BodyError{Message: MsgEmptyBody}
	}
	return b, nil
}

// CheckContentType requires an application/json Content-Type header.
// Parameters such as charset are ignored.
func CheckContentType(r *http.Request) error {
	raw := strings.TrimSpace(r.Header.Get("Content-Type"))
	if raw == "" {
		if _, ok := r.Header["Content-Type"]; !ok {
			return &BodyError{Message: MsgMissingContentType}
		}
		return &BodyError{Message: MsgOnlyJSON}
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil || !strings.EqualFold(mediaType, "application/json") {
		return &BodyError{Message: MsgOnlyJSON, Err: err}
	}
	return nil
}

// DecodeObject checks the content type, limits and reads the body, and
// parses it as a JSON object. Numbers are kept as json.Number.
func DecodeObject(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]any, error) {
	if err := CheckContentType(r); err != nil {
		return nil, err
	}
	if maxBytes > 0 && r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	b, err := ReadBody(r)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &BodyError{Message: MsgInvalidJSON, Err: err}
	}
	if err := ensureEOF(dec); err != nil {
		return nil, &BodyError{Message: MsgInvalidJSON, Err: err}
	}
	if out == nil {
		return nil, &BodyError{Message: MsgInvalidJSON, Err: errors.New("body is not a JSON object")}
	}
	return out, nil
}

func ensureEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("extra data")
}
