package shared

import (
	"errors"
	"fmt"
)

var (
	ErrLayoutFileMissing = errors.New("layout file missing")
	ErrInvalidHex        = errors.New("invalid hex input")
)

type LayoutMismatchError struct {
	Param    string
	Expected string
	Found    string
	File     string
}

func (err LayoutMismatchError) Error() string {
	return fmt.Sprintf("`%v` layout mismatch; expected: %v, found: %v, file: %v",
		err.Param, err.Expected, err.Found, err.File)
}
