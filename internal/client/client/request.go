package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/dmitrijs2005/cookquest/internal/common"
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Request describes one logical API call. It is a value: the executor never
// mutates it and builds a new *http.Request for every attempt.
type Request struct {
	Method Method
	// Path is joined to the base URL unless it is already absolute.
	Path string
	// Body is any JSON-serialisable value, []byte sent verbatim, or a
	// *MultipartForm.
	Body    any
	Headers map[string]string

	// Timeout and MaxAttempts override the executor defaults when positive.
	Timeout     time.Duration
	MaxAttempts int

	// SkipAuth sends the call without a bearer token. SkipRefresh disables
	// the 401 refresh/replay for it.
	SkipAuth    bool
	SkipRefresh bool
}

// MultipartForm is binary form data.
type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

func (f *MultipartForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for _, file := range f.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set(common.ContentTypeHeaderName, ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// encodeBody serialises the body once per logical call. A nil body yields a
// nil payload and no content type.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartForm:
		return b.encode()
	case []byte:
		return b, "application/octet-stream", nil
	case json.RawMessage:
		return b, common.ContentTypeJSON, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, common.ContentTypeJSON, nil
	}
}
