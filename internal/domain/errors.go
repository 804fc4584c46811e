package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalInput marks dataset-level problems that abort a run: empty
	// input, a missing required column, or an unparseable timestamp.
	ErrFatalInput = errors.New("fatal input error")

	// ErrConfiguration marks a view or correlation that references a field
	// the data does not have, or is otherwise malformed.
	ErrConfiguration = errors.New("configuration error")
)

// InputError describes a fatal problem with the input dataset.
type InputError struct {
	Op  string
	Msg string
	Row int // 1-based data row, 0 when not row specific
	Err error
}

func (e *InputError) Error() string {
	msg := e.Msg
	if e.Row > 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFatalInput) match any InputError.
func (e *InputError) Is(target error) bool { return target == ErrFatalInput }

// ConfigError describes an invalid view or correlation declaration.
type ConfigError struct {
	Op    string
	Field Field
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Op, e.Field, e.Msg)
}

// Is makes errors.Is(err, ErrConfiguration) match any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func inputErr(op string, row int, err error, format string, args ...any) error {
	return &InputError{Op: op, Msg: fmt.Sprintf(format, args...), Row: row, Err: err}
}

func configErr(op string, field Field, format string, args ...any) error {
	return &ConfigError{Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}
