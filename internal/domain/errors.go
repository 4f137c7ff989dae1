package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidDomain      = errors.New("invalid domain")
	ErrRateLimited        = errors.New("domain check rate limited")
	ErrUpstream           = errors.New("porkbun api error")
	ErrMissingCredentials = errors.New("missing porkbun api credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownTool        = errors.New("unknown tool")
)

// ResponseError is implemented by errors that carry a response payload
// front ends can show as-is (the upstream body, or a locally built one).
type ResponseError interface {
	error
	ResponseData() map[string]any
}

// InvalidDomainError is returned by ValidateDomain. Its message always
// contains the word "Domain".
type InvalidDomainError struct {
	Domain string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return "Domain validation failed: " + e.Reason
}

func (e *InvalidDomainError) Is(target error) bool {
	return target == ErrInvalidDomain
}

// RateLimitError is returned when a domain check is attempted inside the
// cooldown window. No request was sent.
type RateLimitError struct {
	TimeLeft int // seconds, rounded up
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before checking another domain.", e.TimeLeft)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// ResponseData mirrors the shape of an upstream error body.
func (e *RateLimitError) ResponseData() map[string]any {
	return map[string]any{
		"status":  "ERROR",
		"message": e.Error(),
	}
}

// ArgumentError reports a missing or malformed tool/command argument.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s %s", e.Name, e.Reason)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
