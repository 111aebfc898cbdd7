// Package errs defines the error taxonomy shared by the screening pipeline.
//
// Every failure is an *Error whose Kind is one of the sentinel values below,
// so callers can branch with errors.Is without knowing which stage failed.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failed")
	ErrEmptyDocument     = errors.New("empty document")
	ErrEvaluation        = errors.New("evaluation failed")
	ErrPersistence       = errors.New("persistence failed")
	ErrConfiguration     = errors.New("configuration error")
)

// Error carries the failed operation, the thing it failed on and the cause.
type Error struct {
	Kind    error
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind, the cause is reachable through Unwrap.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func UnsupportedFormat(path, ext string) error {
	return &Error{
		Kind:    ErrUnsupportedFormat,
		Op:      "extract",
		Subject: path,
		Err:     fmt.Errorf("extension %q is neither .pdf nor .docx", ext),
	}
}

func Extraction(path string, err error) error {
	return &Error{Kind: ErrExtraction, Op: "extract", Subject: path, Err: err}
}

func EmptyDocument(name string) error {
	return &Error{Kind: ErrEmptyDocument, Op: "normalize", Subject: name}
}

func Evaluation(err error) error {
	return &Error{Kind: ErrEvaluation, Op: "evaluate", Err: err}
}

func Persistence(path string, err error) error {
	return &Error{Kind: ErrPersistence, Op: "record", Subject: path, Err: err}
}

func Configuration(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Op: "configure", Err: fmt.Errorf(format, args...)}
}

// Kind reports which sentinel err belongs to, or nil for foreign errors.
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
