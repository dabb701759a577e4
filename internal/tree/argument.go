package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ArgumentType parses one typed value from the front of the remaining
// input. Parse returns the captured value, the unconsumed remainder, and a
// *SyntaxError when the input does not match.
type ArgumentType interface {
	Parse(in string) (value any, rest string, err error)
	// Suggest returns completions for a partially typed value. Most
	// types have nothing to offer and return nil.
	Suggest(prefix string) []string
}

// SyntaxError reports malformed user input. Callers recover it into a
// "not handled" result instead of propagating it as a fault.
type SyntaxError struct {
	Input string
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Input == "" {
		return "syntax: " + e.Msg
	}
	return fmt.Sprintf("syntax: %s at %q", e.Msg, e.Input)
}

// IsSyntax reports whether err wraps a SyntaxError.
func IsSyntax(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// GreedyString captures everything up to the end of the line, including
// spaces. The capture may be empty.
type GreedyString struct{}

// Parse consumes the whole remaining input.
func (GreedyString) Parse(in string) (any, string, error) {
	return in, "", nil
}

// Suggest returns nil; free text has no completions.
func (GreedyString) Suggest(string) []string { return nil }

// Word captures a single whitespace-delimited token.
type Word struct{}

// Parse consumes up to the next space.
func (Word) Parse(in string) (any, string, error) {
	if in == "" {
		return nil, "", &SyntaxError{Msg: "expected a word"}
	}
	if i := strings.IndexByte(in, ' '); i >= 0 {
		return in[:i], in[i+1:], nil
	}
	return in, "", nil
}

// Suggest returns nil.
func (Word) Suggest(string) []string { return nil }

// Int captures a single integer token.
type Int struct{}

// Parse consumes one token and converts it to an int.
func (Int) Parse(in string) (any, string, error) {
	raw, rest, err := Word{}.Parse(in)
	if err != nil {
		return nil, "", err
	}
	v, err := strconv.Atoi(raw.(string))
	if err != nil {
		return nil, "", &SyntaxError{Input: raw.(string), Msg: "expected an integer"}
	}
	return v, rest, nil
}

// Suggest returns nil.
func (Int) Suggest(string) []string { return nil }
