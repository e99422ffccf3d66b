package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrBackendAuth        = errors.New("llm backend auth error")
	ErrBackendRateLimited = errors.New("llm backend rate limited")
	ErrBackendServer      = errors.New("llm backend server error")
	ErrBackendTimeout     = errors.New("llm backend timeout")
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	ErrBackendEmpty       = errors.New("llm empty response")
)

// APIError es la respuesta de error del proveedor con su codigo HTTP.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Unwrap mapea el codigo a la taxonomia, para usar errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrBackendAuth
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrBackendRateLimited
	case e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout:
		return ErrBackendTimeout
	case e.StatusCode >= 500:
		return ErrBackendServer
	default:
		return nil
	}
}

// IsRetryable indica si el error pertenece a la taxonomia que se reintenta localmente.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrBackendAuth) ||
		errors.Is(err, ErrBackendRateLimited) ||
		errors.Is(err, ErrBackendServer) ||
		errors.Is(err, ErrBackendTimeout)
}

// classifyTransportError convierte timeouts de red y de contexto en ErrBackendTimeout.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
