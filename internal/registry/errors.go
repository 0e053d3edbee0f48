package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates registry failures so callers can branch without
// string matching.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindForbidden Kind = "forbidden"
	KindOther     Kind = "other"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("REG_API: %s (status %d)", e.Message, e.Status)
}

func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindNotFound
}

func IsForbidden(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindForbidden
}

func statusError(status int, body []byte) *Error {
	kind := KindOther
	switch status {
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusForbidden:
		kind = KindForbidden
	}
	message := http.StatusText(status)
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			message = payload.Error
		} else if payload.Message != "" {
			message = payload.Message
		}
	}
	return &Error{Kind: kind, Status: status, Message: message}
}
