package generator

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a successful response has no
// decodable JSON body.
var ErrMalformedResponse = errors.New("malformed response")

// User-visible fallback messages. MessageNetwork is used only when the
// transport error carries no text of its own.
const (
	MessageNetwork   = "Não foi possível conectar ao servidor"
	MessageMalformed = "Resposta inválida do servidor"
	MessageUnknown   = "Erro ao gerar bio"
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	// Message is the backend's "error" field, empty when absent.
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Erro HTTP %d", e.StatusCode)
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network failure"
	}
	return "network failure: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Message converts a Generate error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Err != nil && netErr.Err.Error() != "" {
			return netErr.Err.Error()
		}
		return MessageNetwork
	}

	if errors.Is(err, ErrMalformedResponse) {
		return MessageMalformed
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageUnknown
}
