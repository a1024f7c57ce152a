package netlify

import (
	"encoding/json"
	"strings"
)

// FallbackMessage is reported when no known error shape yields text,
// including pure transport failures with no response at all.
const FallbackMessage = "Unknown error occurred"

// Shape identifies which known layout an API error body used.
type Shape int

const (
	ShapeNone     Shape = iota
	ShapeMessage        // {"message": "..."}
	ShapeError          // {"error": "..."}
	ShapeErrors         // {"errors": [{"message": "..."}, ...]}
)

func (s Shape) String() string {
	switch s {
	case ShapeMessage:
		return "message"
	case ShapeError:
		return "error"
	case ShapeErrors:
		return "errors"
	default:
		return "none"
	}
}

// ErrorBody is a classified API error payload. Text is empty for ShapeNone.
type ErrorBody struct {
	Shape Shape
	Text  string
}

type rawErrorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type rawErrorItem struct {
	Message json.RawMessage `json:"message"`
}

// ParseErrorBody classifies body into the first shape, in precedence order
// message > error > errors, that carries a non-empty string.
func ParseErrorBody(body []byte) ErrorBody {
	if len(body) == 0 {
		return ErrorBody{Shape: ShapeNone}
	}

	var raw rawErrorBody
	if err := json.Unmarshal(body, &raw); err != nil {
		// Non-object bodies (HTML, plain text, arrays) match nothing.
		return ErrorBody{Shape: ShapeNone}
	}

	if s := jsonString(raw.Message); s != "" {
		return ErrorBody{Shape: ShapeMessage, Text: s}
	}
	if s := jsonString(raw.Error); s != "" {
		return ErrorBody{Shape: ShapeError, Text: s}
	}

	var items []json.RawMessage
	_ = json.Unmarshal(raw.Errors, &items)
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		var e rawErrorItem
		if err := json.Unmarshal(it, &e); err != nil {
			continue
		}
		if s := jsonString(e.Message); s != "" {
			msgs = append(msgs, s)
		}
	}
	if len(msgs) > 0 {
		return ErrorBody{Shape: ShapeErrors, Text: strings.Join(msgs, ", ")}
	}
	return ErrorBody{Shape: ShapeNone}
}

// NormalizeError reduces a failed call to one human-readable message.
func NormalizeError(r Result) string {
	eb := ParseErrorBody(r.Body)
	if eb.Shape == ShapeNone {
		return FallbackMessage
	}
	return eb.Text
}

// jsonString returns the trimmed value when raw is a JSON string, else "".
func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
