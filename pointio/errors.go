package pointio

import "fmt"

// ParseError reports an invalid token in a point file.
type ParseError struct {
	Line  int // 1-based line number
	Token int // 1-based point number
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pointio: line %d, point %d: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
