package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseableFile is returned when no attempt in the chain accepts a file.
var ErrUnparseableFile = errors.New("unparseable file")

// AmountParseError reports a value cell that cannot be coerced to an amount.
// It is fatal for the whole file: a dropped row would corrupt every later
// running balance.
type AmountParseError struct {
	Row   int // 1-based line number, header is row 1
	Value string
}

func (e *AmountParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse amount %q", e.Row, e.Value)
}

// RowError reports a bad cell other than the amount.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// attemptError is one failed link of the chain.
type attemptError struct {
	name string
	err  error
}

// chainError joins every attempt failure under ErrUnparseableFile.
type chainError struct {
	attempts []attemptError
}

func (e *chainError) Error() string {
	parts := make([]string, len(e.attempts))
	for i, a := range e.attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.name, a.err)
	}
	return fmt.Sprintf("%v (%s)", ErrUnparseableFile, strings.Join(parts, "; "))
}

func (e *chainError) Is(target error) bool { return target == ErrUnparseableFile }

func (e *chainError) Unwrap() []error {
	errs := make([]error, len(e.attempts))
	for i, a := range e.attempts {
		errs[i] = a.err
	}
	return errs
}
