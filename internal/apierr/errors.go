// Package apierr defines every failure the API can report to a client.
package apierr

import (
	"errors"
	"net/http"
)

// Kind enumerates the failures rendered at the HTTP boundary.
type Kind int

const (
	KindResourceNotFound Kind = iota
	KindRouteNotFound
	KindUnauthorized
	KindNotLoggedIn
	KindInvalidJwtToken
	KindInvalidCredentials
	KindPasswordResetTokenExpired
	KindUserConfirmationTokenExpired
	KindInternalServerError
	KindBodyValidationErrors
	KindInvalidSortingQuerySyntax
	KindNonExistentSortingQueryField
	KindInvalidPaginationPageQueryField
	KindInvalidPaginationSizeQueryField
	KindInvalidIDParam
	KindAlreadyExists
	KindNotAnImage
	KindUnnamedMultipartFile
	KindEmptyFile
	KindNoImage
)

// Kinds lists every Kind in declaration order.
var Kinds = []Kind{
	KindResourceNotFound,
	KindRouteNotFound,
	KindUnauthorized,
	KindNotLoggedIn,
	KindInvalidJwtToken,
	KindInvalidCredentials,
	KindPasswordResetTokenExpired,
	KindUserConfirmationTokenExpired,
	KindInternalServerError,
	KindBodyValidationErrors,
	KindInvalidSortingQuerySyntax,
	KindNonExistentSortingQueryField,
	KindInvalidPaginationPageQueryField,
	KindInvalidPaginationSizeQueryField,
	KindInvalidIDParam,
	KindAlreadyExists,
	KindNotAnImage,
	KindUnnamedMultipartFile,
	KindEmptyFile,
	KindNoImage,
}

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	switch k {
	case KindResourceNotFound, KindRouteNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotLoggedIn,
		KindInvalidJwtToken,
		KindInvalidCredentials,
		KindPasswordResetTokenExpired,
		KindUserConfirmationTokenExpired:
		return http.StatusUnauthorized
	case KindInternalServerError:
		return http.StatusInternalServerError
	case KindBodyValidationErrors,
		KindInvalidSortingQuerySyntax,
		KindNonExistentSortingQueryField,
		KindInvalidPaginationPageQueryField,
		KindInvalidPaginationSizeQueryField,
		KindInvalidIDParam,
		KindNotAnImage,
		KindUnnamedMultipartFile,
		KindEmptyFile,
		KindNoImage:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable code for k.
func (k Kind) Code() string {
	switch k {
	case KindResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case KindRouteNotFound:
		return "ROUTE_NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindNotLoggedIn:
		return "NOT_LOGGED_IN"
	case KindInvalidJwtToken:
		return "INVALID_JWT_TOKEN"
	case KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case KindPasswordResetTokenExpired:
		return "PASSWORD_RESET_TOKEN_EXPIRED"
	case KindUserConfirmationTokenExpired:
		return "USER_CONFIRMATION_TOKEN_EXPIRED"
	case KindInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case KindBodyValidationErrors:
		return "BODY_VALIDATION_ERRORS"
	case KindInvalidSortingQuerySyntax:
		return "INVALID_SORTING_QUERY_SYNTAX"
	case KindNonExistentSortingQueryField:
		return "INVALID_SORTING_QUERY_FIELD"
	case KindInvalidPaginationPageQueryField:
		return "INVALID_PAGINATION_PAGE_QUERY_FIELD"
	case KindInvalidPaginationSizeQueryField:
		return "INVALID_PAGINATION_SIZE_QUERY_FIELD"
	case KindInvalidIDParam:
		return "INVALID_ID_PARAM"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindNotAnImage:
		return "NOT_AN_IMAGE"
	case KindUnnamedMultipartFile:
		return "UNNAMED_MULTIPART_FILE"
	case KindEmptyFile:
		return "EMPTY_FILE"
	case KindNoImage:
		return "NO_IMAGE"
	}
	return "INTERNAL_SERVER_ERROR"
}

// Resource names the entity a failure refers to.
type Resource string

const (
	ResourceUsers                  Resource = "USERS"
	ResourceFollowers              Resource = "FOLLOWERS"
	ResourceBlockedUsers           Resource = "BLOCKED_USERS"
	ResourceUserPrivacyPreferences Resource = "USER_PRIVACY_PREFERENCES"
	ResourceUserConfirmationToken  Resource = "USER_CONFIRMATION_TOKEN"
	ResourcePasswordResetToken     Resource = "PASSWORD_RESET_TOKEN"
	ResourceUserProfileImages      Resource = "USER_PROFILE_IMAGES"
)

// IntErrorKind classifies why an integer query parameter failed to parse.
type IntErrorKind string

const (
	IntErrorEmpty        IntErrorKind = "EMPTY"
	IntErrorInvalidDigit IntErrorKind = "INVALID_DIGIT"
	IntErrorPosOverflow  IntErrorKind = "POS_OVERFLOW"
	IntErrorNegOverflow  IntErrorKind = "NEG_OVERFLOW"
	IntErrorZero         IntErrorKind = "ZERO"
)

// Error is a client-facing failure. The cause, if any, is logged but never rendered.
type Error struct {
	kind     Kind
	resource Resource
	field    string
	intKind  IntErrorKind
	errors   ValidationErrors
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.kind.Code() + ": " + e.cause.Error()
	}
	if e.resource != "" {
		return e.kind.Code() + ": " + string(e.resource)
	}
	return e.kind.Code()
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the failure kind.
func (e *Error) Kind() Kind { return e.kind }

// Status returns the HTTP status code.
func (e *Error) Status() int { return e.kind.Status() }

// Code returns the machine-readable code.
func (e *Error) Code() string { return e.kind.Code() }

// Resource returns the entity the failure refers to, if any.
func (e *Error) Resource() Resource { return e.resource }

// ValidationErrors returns the body problems of a BodyValidationErrors failure.
func (e *Error) ValidationErrors() ValidationErrors { return e.errors }

// Details returns the JSON-ready detail payload for the response body.
func (e *Error) Details() any {
	switch e.kind {
	case KindResourceNotFound, KindInvalidIDParam, KindAlreadyExists:
		return e.resource
	case KindBodyValidationErrors:
		return e.errors
	case KindNonExistentSortingQueryField:
		return e.field
	case KindInvalidPaginationPageQueryField, KindInvalidPaginationSizeQueryField:
		if e.intKind == "" {
			return nil
		}
		return e.intKind
	case KindRouteNotFound,
		KindUnauthorized,
		KindNotLoggedIn,
		KindInvalidJwtToken,
		KindInvalidCredentials,
		KindPasswordResetTokenExpired,
		KindUserConfirmationTokenExpired,
		KindInternalServerError,
		KindInvalidSortingQuerySyntax,
		KindNotAnImage,
		KindUnnamedMultipartFile,
		KindEmptyFile,
		KindNoImage:
		return nil
	}
	return nil
}

// Response is the body written for every failure.
type Response struct {
	Code    string `json:"code"`
	Details any    `json:"details"`
}

// Response builds the rendered body of e.
func (e *Error) Response() Response {
	return Response{Code: e.Code(), Details: e.Details()}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.kind == k
}

func ResourceNotFound(r Resource) *Error { return &Error{kind: KindResourceNotFound, resource: r} }

func RouteNotFound() *Error { return &Error{kind: KindRouteNotFound} }

func Unauthorized() *Error { return &Error{kind: KindUnauthorized} }

func NotLoggedIn() *Error { return &Error{kind: KindNotLoggedIn} }

func InvalidJwtToken() *Error { return &Error{kind: KindInvalidJwtToken} }

func InvalidCredentials() *Error { return &Error{kind: KindInvalidCredentials} }

func PasswordResetTokenExpired() *Error { return &Error{kind: KindPasswordResetTokenExpired} }

func UserConfirmationTokenExpired() *Error { return &Error{kind: KindUserConfirmationTokenExpired} }

// Internal hides cause behind an opaque 500.
func Internal(cause error) *Error { return &Error{kind: KindInternalServerError, cause: cause} }

func BodyValidationErrors(errs ValidationErrors) *Error {
	return &Error{kind: KindBodyValidationErrors, errors: errs}
}

func InvalidSortingQuerySyntax() *Error { return &Error{kind: KindInvalidSortingQuerySyntax} }

func NonExistentSortingQueryField(field string) *Error {
	return &Error{kind: KindNonExistentSortingQueryField, field: field}
}

func InvalidPaginationPageQueryField(k IntErrorKind) *Error {
	return &Error{kind: KindInvalidPaginationPageQueryField, intKind: k}
}

func InvalidPaginationSizeQueryField(k IntErrorKind) *Error {
	return &Error{kind: KindInvalidPaginationSizeQueryField, intKind: k}
}

func InvalidIDParam(r Resource) *Error { return &Error{kind: KindInvalidIDParam, resource: r} }

func AlreadyExists(r Resource) *Error { return &Error{kind: KindAlreadyExists, resource: r} }

func NotAnImage() *Error { return &Error{kind: KindNotAnImage} }

func UnnamedMultipartFile() *Error { return &Error{kind: KindUnnamedMultipartFile} }

func EmptyFile() *Error { return &Error{kind: KindEmptyFile} }

func NoImage() *Error { return &Error{kind: KindNoImage} }
