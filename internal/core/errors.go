// Package core provides the core types and interfaces shared by the chain
// client, the contract wrappers and the HTTP API.
package core

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeNetwork indicates the LCD endpoint failed or was unreachable (5xx)
	ErrorTypeNetwork ErrorType = "network_error"
	// ErrorTypeRateLimit indicates the LCD endpoint throttled the request (429)
	ErrorTypeRateLimit ErrorType = "rate_limit_error"
	// ErrorTypeInvalidRequest indicates a malformed request or message (4xx)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeNotFound indicates an unknown account, contract or tx (404)
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeTx indicates a transaction was rejected by CheckTx or DeliverTx
	ErrorTypeTx ErrorType = "tx_error"
	// ErrorTypeConfig indicates missing or contradictory configuration
	ErrorTypeConfig ErrorType = "config_error"
)

// ChainError is the base error type for everything that talks to the chain
type ChainError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Code and Codespace carry the ABCI result of a failed transaction
	Code      uint32 `json:"code,omitempty"`
	Codespace string `json:"codespace,omitempty"`
	TxHash    string `json:"txhash,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *ChainError) Error() string {
	if e.Codespace != "" || e.Code != 0 {
		return fmt.Sprintf("%s: %s (codespace=%s code=%d)", e.Type, e.Message, e.Codespace, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ChainError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *ChainError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTx:
		return http.StatusUnprocessableEntity
	case ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *ChainError) ToJSON() map[string]interface{} {
	body := map[string]interface{}{
		"type":    e.Type,
		"message": e.Message,
	}
	if e.TxHash != "" {
		body["txhash"] = e.TxHash
	}
	if e.Code != 0 {
		body["code"] = e.Code
		body["codespace"] = e.Codespace
	}
	return map[string]interface{}{"error": body}
}

// NewNetworkError creates a new network error (upstream 5xx or transport failure)
func NewNetworkError(statusCode int, message string, err error) *ChainError {
	return &ChainError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string) *ChainError {
	return &ChainError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *ChainError {
	return &ChainError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string) *ChainError {
	return &ChainError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewTxError creates an error for a transaction rejected with a non-zero ABCI code
func NewTxError(txHash, codespace string, code uint32, rawLog string) *ChainError {
	return &ChainError{
		Type:       ErrorTypeTx,
		Message:    rawLog,
		StatusCode: http.StatusUnprocessableEntity,
		Code:       code,
		Codespace:  codespace,
		TxHash:     txHash,
	}
}

// NewConfigError creates a configuration error
func NewConfigError(message string, err error) *ChainError {
	return &ChainError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// ParseLCDError turns a non-200 LCD response into a ChainError. The LCD
// gateway answers with {"code": <grpc code>, "message": "...", "details": []}.
func ParseLCDError(statusCode int, body []byte) *ChainError {
	message := string(body)
	if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
		message = m.String()
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimitError(message)
	case statusCode == http.StatusNotFound:
		return NewNotFoundError(message)
	case statusCode >= 400 && statusCode < 500:
		err := NewInvalidRequestError(message, nil)
		err.StatusCode = statusCode
		return err
	default:
		return NewNetworkError(http.StatusBadGateway, message, nil)
	}
}
