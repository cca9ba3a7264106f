package errors

import "errors"

type Category string

const (
	CategoryInvalidInput    Category = "invalid_input"
	CategoryVerification    Category = "verification_failed"
	CategoryNotFound        Category = "not_found"
	CategoryConflict        Category = "conflict"
	CategoryIOFailure       Category = "io_failure"
	CategoryNetworkFailure  Category = "network_failure"
	CategoryInternalFailure Category = "internal_failure"
)

type classifiedError struct {
	category Category
	code     string
	hint     string
	cause    error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func (e *classifiedError) Category() Category {
	return e.category
}

func (e *classifiedError) Code() string {
	return e.code
}

func (e *classifiedError) Hint() string {
	return e.hint
}

func Wrap(cause error, category Category, code, hint string) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		category: category,
		code:     code,
		hint:     hint,
		cause:    cause,
	}
}

func New(message string, category Category, code, hint string) error {
	return &classifiedError{
		category: category,
		code:     code,
		hint:     hint,
		cause:    errors.New(message),
	}
}

func CategoryOf(err error) Category {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.category
	}
	return ""
}

func CodeOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.code
	}
	return ""
}

func HintOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.hint
	}
	return ""
}

func IsNotFound(err error) bool {
	return CategoryOf(err) == CategoryNotFound
}

func IsConflict(err error) bool {
	return CategoryOf(err) == CategoryConflict
}

func IsInvalidInput(err error) bool {
	return CategoryOf(err) == CategoryInvalidInput
}
