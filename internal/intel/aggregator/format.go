package aggregator

import (
	"strings"

	apperrors "intel-agent/internal/common/errors"
)

// OutputFormat selects how a Summary is rendered.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat validates a format selector. An empty selector means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", apperrors.NewInvalidOutputFormatError(s)
	}
}

func (f OutputFormat) String() string {
	return string(f)
}
