package codec

import (
	"errors"
	"fmt"
)

type Kind int

const (
	ReadFailure Kind = iota + 1
	DecodeFailure
	EncodeFailure
)

var (
	ErrRead   = errors.New("read failure")
	ErrDecode = errors.New("decode failure")
	ErrEncode = errors.New("encode failure")
)

func (k Kind) sentinel() error {
	switch k {
	case ReadFailure:
		return ErrRead
	case DecodeFailure:
		return ErrDecode
	case EncodeFailure:
		return ErrEncode
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown failure"
}

// Error reports a failed read, decode or encode of a single named file.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Name, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) and friends work on wrapped errors.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
