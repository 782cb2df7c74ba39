package csvio

import (
	"errors"
	"log/slog"
)

var (
	ErrInvalidColumns = errors.New("All column indices must be positive or zero")
	ErrOpenFile       = errors.New("can not open file")
	ErrReadFile       = errors.New("can not read file")
	ErrBegin          = errors.New("can not begin transaction")
	ErrQuery          = errors.New("export query failed")
	ErrCommit         = errors.New("commit failed")
)

// Result is what an import or export reports back.
//
// Errors lists every problem in the order it was seen, row-level ones included.
// Err is only set when the run was aborted or its writes were lost; its text is
// also the last entry of Errors.
type Result struct {
	// Rows is the number of rows committed by an import or written by an export.
	Rows   int
	Errors []string
	Err    error
}

// OK reports whether the run finished without any error message.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// addError appends msg to the error list and logs it.
func (r *Result) addError(logger *slog.Logger, msg string) {
	logger.Warn(msg)
	r.Errors = append(r.Errors, msg)
}

// abort records a fatal error. msg is the user-facing text, cause the sentinel
// or underlying error callers can match with errors.Is.
func (r *Result) abort(logger *slog.Logger, msg string, cause error) Result {
	r.addError(logger, msg)
	r.Err = &runError{msg: msg, cause: cause}
	return *r
}

type runError struct {
	msg   string
	cause error
}

func (e *runError) Error() string { return e.msg }
func (e *runError) Unwrap() error { return e.cause }
