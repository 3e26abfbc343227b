package normalize

import (
	"fmt"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// ParseError reports text that looked like JSON but could not be decoded,
// even after repair. Field names the offending member, empty for a whole body.
type ParseError struct {
	Field string
	Text  string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("could not parse %q field as a JSON list", e.Field)
	}
	return "response is not valid JSON and could not be repaired"
}

// UnrecognizedShapeError reports valid JSON that no extraction rule matched
type UnrecognizedShapeError struct {
	Kind jsonval.Kind
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("no displayable data in %s response", e.Kind)
}
