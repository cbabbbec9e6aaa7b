package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/cookquest/internal/common"
)

// Response is a successful (200, 201, 202, 204) exchange. Data is nil for a
// 204 or for a body that is empty or not JSON.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Data   json.RawMessage
}

// Validator is implemented by payload models that check their own schema.
type Validator interface {
	Validate() error
}

// Decode unmarshals Data into v and validates it when v is a Validator. Any
// failure is an *APIError with CodeSerialization carrying the raw body.
func (r *Response) Decode(v any) error {
	if r.Data == nil {
		return r.serializationError("response has no JSON payload", common.ErrInvalidPayload)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return r.serializationError("cannot decode response payload", err)
	}
	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return r.serializationError("response payload failed validation", fmt.Errorf("%w: %v", common.ErrInvalidPayload, err))
		}
	}
	return nil
}

func (r *Response) serializationError(msg string, err error) *APIError {
	return &APIError{
		Status:  r.Status,
		Code:    CodeSerialization,
		Message: msg,
		Raw:     string(r.Body),
		Err:     err,
	}
}

// DecodeAs decodes resp into a new T.
func DecodeAs[T any](resp *Response) (T, error) {
	var v T
	if err := resp.Decode(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
