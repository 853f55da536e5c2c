package serrors

import "fmt"

// BaseError is a coded error carried across service boundaries. Code is a
// stable machine-readable identifier, Key an optional client-facing message
// key, TemplateData the values interpolated into the rendered message.
type BaseError struct {
	Code         string
	Message      string
	Key          string
	TemplateData map[string]string
}

func NewError(code, message, key string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Key:     key,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	return &BaseError{
		Code:         e.Code,
		Message:      e.Message,
		Key:          e.Key,
		TemplateData: data,
	}
}

// Is matches two BaseErrors by code so sentinel errors survive WithTemplateData.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
