package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// Page-level failures. The target was reached (or not) but holds
	// nothing worth extracting.
	ErrCodeNotFound         = "PAGE_NOT_FOUND"
	ErrCodeHTTPStatus       = "HTTP_ERROR"
	ErrCodeNoResponse       = "NO_RESPONSE"
	ErrCodeErrorPage        = "ERROR_PAGE_DETECTED"
	ErrCodeInsufficientData = "INSUFFICIENT_DATA"
	ErrCodeRobotsDisallowed = "ROBOTS_DISALLOWED"

	// LLM-related error codes for the analysis endpoints.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"

	ErrCodeStorage = "STORAGE_FAILED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Status  int   // upstream HTTP status, set for ErrCodeNotFound and ErrCodeHTTPStatus
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message, Status: e.Status}
}

// NewNavigationError reports that every wait strategy failed to load the page.
func NewNavigationError(cause error) *ScrapeError {
	return NewScrapeError(ErrCodeNavigation,
		"failed to connect to the portfolio, check the URL and make sure the site is reachable", cause)
}

// NewNotFoundError reports a 404 from the target.
func NewNotFoundError() *ScrapeError {
	return &ScrapeError{
		Code:    ErrCodeNotFound,
		Message: "page not found (404), the portfolio may have been moved or deleted",
		Status:  404,
	}
}

// NewHTTPStatusError reports any other 4xx/5xx from the target.
func NewHTTPStatusError(status int) *ScrapeError {
	return &ScrapeError{
		Code:    ErrCodeHTTPStatus,
		Message: fmt.Sprintf("page returned error %d", status),
		Status:  status,
	}
}

// NewNoResponseError reports a navigation that produced no document response.
func NewNoResponseError() *ScrapeError {
	return NewScrapeError(ErrCodeNoResponse,
		"no response from the server, the portfolio may be offline", nil)
}

// NewErrorPageError reports a short page whose text reads like a host's error page.
func NewErrorPageError(phrase string) *ScrapeError {
	return NewScrapeError(ErrCodeErrorPage,
		"the URL appears to be a broken link or error page ("+phrase+")", nil)
}

// NewInsufficientDataError reports a page that loaded but yielded no portfolio signal.
func NewInsufficientDataError() *ScrapeError {
	return NewScrapeError(ErrCodeInsufficientData,
		"could not extract portfolio data, the page may be empty or not a portfolio", nil)
}

// AsScrapeError returns the first ScrapeError in err's chain.
func AsScrapeError(err error) (*ScrapeError, bool) {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	se, ok := AsScrapeError(err)
	return ok && se.Code == code
}

// IsPageFailure reports whether err describes the target page itself
// rather than the service: the caller should fix the URL, not retry.
func IsPageFailure(err error) bool {
	se, ok := AsScrapeError(err)
	if !ok {
		return false
	}
	switch se.Code {
	case ErrCodeNavigation, ErrCodeNotFound, ErrCodeHTTPStatus, ErrCodeNoResponse,
		ErrCodeErrorPage, ErrCodeInsufficientData, ErrCodeRobotsDisallowed:
		return true
	}
	return false
}
