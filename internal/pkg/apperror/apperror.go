package apperror

// Kind classifies an error for the API boundary so the UI can react
// correctly: a conflict ("dates no longer available") is worded
// differently from an expiry ("your reservation window timed out").
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindExpiry     Kind = "expiry"
	KindExternal   Kind = "external"
	KindInvariant  Kind = "invariant"
	KindInternal   Kind = "internal"
)

// AppError is a typed error that includes an HTTP status code and a
// taxonomy kind. Expected business conditions are returned as values
// of this type; only genuine faults cross layers as plain errors.
type AppError struct {
	Code    int    // HTTP status code (e.g., 400, 409)
	Kind    Kind   // taxonomy classification
	Message string // user-facing error message
	Err     error  // the underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code, kind and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}
