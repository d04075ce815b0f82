// Package gxerr defines the error kinds shared by every package in this
// module, following the single "Result<T, Err>" convention of spec §7.
package gxerr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap one of these in an [*Error] and callers can
// still discriminate with errors.Is.
var (
	// ErrTruncatedStream is returned when a display-list byte limit is hit
	// mid-command.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrUnknownCommand is returned when a display-list tag has no defined
	// decoding.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidRegister is returned for a BP/XF/CP write to a register
	// this module does not model. Non-fatal on read, fatal on write.
	ErrInvalidRegister = errors.New("invalid register")

	// ErrInvalidEnum is returned when a bitfield value is outside its
	// declared domain.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrInvariantViolation is returned for a violated structural
	// invariant (e.g. texgens/samplers count mismatch).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrQuantizerMismatch is returned when an indirect-matrix lift/lower
	// round trip disagrees after rounding, beyond tolerance.
	ErrQuantizerMismatch = errors.New("indirect matrix quantizer mismatch")

	// ErrInvalidComparisonEncoding is returned (Open Question, spec §9)
	// when a TEV stage is lowered with a comparison formula and a nonzero
	// bias/scale — a combination the register encoding cannot represent.
	ErrInvalidComparisonEncoding = errors.New("comparison formula with non-default bias/scale")

	// ErrUnsupportedIndMatrixSelection is returned (Open Question, spec §9)
	// for the texcoord-scale indirect matrix selections {s0,s1,s2,t0,t1,t2},
	// which this module declares Unsupported.
	ErrUnsupportedIndMatrixSelection = errors.New("unsupported indirect matrix selection")
)

// Error carries the sentinel kind plus the offending field/value, the way
// core.ValidationError does in the teacher.
type Error struct {
	Kind  error  // one of the sentinels above
	Where string // register/field name, e.g. "TEV_COLOR_ENV[3]"
	Value any    // offending value, if any
	Msg   string // extra detail
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Where != "":
		return fmt.Sprintf("%s: %s (%s): %s", e.Kind, e.Where, fmtValue(e.Value), e.Msg)
	case e.Where != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Where, fmtValue(e.Value))
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func fmtValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}

// New builds an *Error for kind, with an optional field name and value.
func New(kind error, where string, value any, msg string) *Error {
	return &Error{Kind: kind, Where: where, Value: value, Msg: msg}
}

// Truncated builds an ErrTruncatedStream at the given stream offset.
func Truncated(offset int) *Error {
	return New(ErrTruncatedStream, "offset", offset, "byte limit reached mid-command")
}

// UnknownCommand builds an ErrUnknownCommand for the given tag byte.
func UnknownCommand(tag byte, offset int) *Error {
	return New(ErrUnknownCommand, "tag", fmt.Sprintf("0x%02x", tag), fmt.Sprintf("at offset %d", offset))
}

// InvalidRegister builds an ErrInvalidRegister for the given register id.
func InvalidRegister(reg uint32) *Error {
	return New(ErrInvalidRegister, "register", fmt.Sprintf("0x%02x", reg), "")
}

// InvalidEnum builds an ErrInvalidEnum for field/value.
func InvalidEnum(field string, value any) *Error {
	return New(ErrInvalidEnum, field, value, "")
}

// InvariantViolation builds an ErrInvariantViolation naming which invariant.
func InvariantViolation(which string) *Error {
	return New(ErrInvariantViolation, which, nil, "")
}

// QuantizerMismatch builds an ErrQuantizerMismatch carrying the
// Jensen-Shannon divergence between the two 3x2 matrices (spec §7).
func QuantizerMismatch(divergence float64) *Error {
	return New(ErrQuantizerMismatch, "divergence", divergence, "")
}

// Warning is a non-fatal recovery the lifter performed (spec §4.3, §7).
type Warning struct {
	Where string
	Msg   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Where, w.Msg)
}
