package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Sentinel errors shared by services and repositories. Handlers translate
// these into the response envelope; nothing else reaches the client.
var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")

// Response is the envelope returned by every endpoint.
//
//	{status: bool, message?: string, data?: object, errors?: object, error?: string|null}
//
// Detail carries the diagnostic string on unexpected failures. It is only
// populated when debug mode is on; otherwise it is serialized as an explicit
// null so production responses never leak internals.
type Response struct {
	Status  bool                `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Detail  *string             `json:"error,omitempty"`
}

// OptionalString distinguishes an absent JSON field from an explicit null and
// from a value. Needed for PUT /project/{id} where `image` drives three
// different persistence behaviors.
type OptionalString struct {
	Present bool
	Valid   bool
	Value   string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
