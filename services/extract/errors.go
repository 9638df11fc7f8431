package extract

import (
	"errors"
	"fmt"
)

var (
	ErrRead                = errors.New("could not read file")
	ErrUnsupportedEncoding = errors.New("file is neither UTF-8 nor GBK")
	ErrUnsupportedKind     = errors.New("file kind cannot be extracted")
	ErrConversionFailed    = errors.New("conversion failed")
	ErrConversionTimeout   = errors.New("conversion timed out")
	ErrConverterMissing    = errors.New("converter is not installed")
)

// Error describes why the text of one file could not be produced.
type Error struct {
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}
