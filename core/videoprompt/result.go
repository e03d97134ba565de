package videoprompt

import "fmt"

// ErrorKind tags the reason a generation failed.
type ErrorKind string

const (
	KindFileNotFound      ErrorKind = "file_not_found"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindMissingCredential ErrorKind = "missing_credential"
	KindTooLarge          ErrorKind = "too_large"
	KindExtraction        ErrorKind = "extraction_failed"
	KindNoResponse        ErrorKind = "no_response"
	KindGeneration        ErrorKind = "generation_failed"
)

const (
	msgFileNotFound      = "Error: Video file not found."
	msgUnsupportedFormat = "Error: File does not appear to be a supported video format."
	msgMissingCredential = "Error: Google Gemini API key not configured. Please add GEMINI_API_KEY to your .env file."
	msgExtraction        = "Error: Unable to extract response text"
	msgNoResponse        = "Error: No valid response from Gemini model"
	msgGenerationPrefix  = "Error generating prompt: "
)

// Error is a failed generation. Message is the human-readable form and
// always starts with "Error".
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindFileNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func generationError(err error, redact func(string) string) *Error {
	detail := err.Error()
	if redact != nil {
		detail = redact(detail)
	}
	return &Error{Kind: KindGeneration, Message: msgGenerationPrefix + detail, Err: err}
}

func tooLargeError(size, limit int64) *Error {
	return &Error{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("Error: Video file is %d bytes, above the %d byte upload limit.", size, limit),
	}
}

// Result holds either a generated prompt or an error, never both.
type Result struct {
	Prompt string
	Err    *Error
}

func (r Result) OK() bool { return r.Err == nil }

// String returns the prompt, or the error message when generation failed.
func (r Result) String() string {
	if r.Err != nil {
		return r.Err.Message
	}
	return r.Prompt
}

func failed(err *Error) Result { return Result{Err: err} }
