// Package apimodel holds the JSON wire types shared by the console API server
// and its client.
package apimodel

import "time"

// Response is the envelope every API endpoint answers with.
type Response[T any] struct {
	Success   bool      `json:"success"`             // True when the request succeeded
	Data      T         `json:"data,omitempty"`      // Payload, absent on failure
	Message   string    `json:"message,omitempty"`   // Human readable message, set on failure
	ErrorCode string    `json:"errorCode,omitempty"` // Machine readable code such as AUTH_001
	Timestamp time.Time `json:"timestamp"`           // Server time the response was produced
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data, Timestamp: time.Now()}
}

// Fail builds a failed envelope.
func Fail(code, message string) Response[any] {
	return Response[any]{Success: false, ErrorCode: code, Message: message, Timestamp: time.Now()}
}

// ErrorBody is the shape of a failed envelope as seen by a client that does
// not care about the payload type.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}
