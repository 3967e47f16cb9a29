package components

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/ai2summary/internal/model"
)

// Markers of the declaration wrapper.
const (
	openMarker  = "#|"
	jsonMarker  = "$JSON"
	closeMarker = "|#"
)

// ErrMalformedDeclaration is returned when a declaration file does not have
// the four line #| / $JSON / document / |# shape, or its document is not
// valid JSON.
var ErrMalformedDeclaration = errors.New("malformed component declaration")

// Declaration is one entry of a screen's $Components list.
type Declaration struct {
	// Type is the component type, for example "Button".
	Type string `json:"$Type"`

	// Name is the instance name, for example "Button1".
	Name string `json:"$Name,omitempty"`

	// Text is the optional Text property. It is kept raw because the
	// designer writes it as a string but older files may hold numbers.
	Text json.RawMessage `json:"Text,omitempty"`
}

// HasText reports whether the declaration carries a Text property.
func (d Declaration) HasText() bool {
	return len(d.Text) > 0
}

// TextValue returns the Text property as a string. JSON strings are
// unquoted; any other JSON value is returned in its literal form.
func (d Declaration) TextValue() string {
	var s string
	if err := json.Unmarshal(d.Text, &s); err == nil {
		return s
	}
	return string(d.Text)
}

type document struct {
	Properties *struct {
		Components *[]Declaration `json:"$Components"`
	} `json:"Properties"`
}

// Parse validates the wrapper and returns the declared components. The
// boolean is false when the document declares no $Components list.
func Parse(lines []string) ([]Declaration, bool, error) {
	if len(lines) != 4 {
		return nil, false, fmt.Errorf("%w: expected 4 lines, got %d", ErrMalformedDeclaration, len(lines))
	}
	if strings.TrimSpace(lines[0]) != openMarker ||
		strings.TrimSpace(lines[1]) != jsonMarker ||
		strings.TrimSpace(lines[3]) != closeMarker {
		return nil, false, fmt.Errorf("%w: missing #| $JSON |# wrapper", ErrMalformedDeclaration)
	}

	var doc document
	if err := json.Unmarshal([]byte(strings.TrimSpace(lines[2])), &doc); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMalformedDeclaration, err)
	}
	if doc.Properties == nil || doc.Properties.Components == nil {
		return nil, false, nil
	}
	return *doc.Properties.Components, true, nil
}

// Summarize counts the component types of a declaration file and collects
// their Text values in declaration order.
func Summarize(lines []string) (model.ComponentsResult, error) {
	decls, ok, err := Parse(lines)
	if err != nil {
		return model.ComponentsResult{}, err
	}
	if !ok {
		return model.WithSentinel[model.ComponentSummary](model.SentinelNoComponents), nil
	}
	return model.Summarized(summarize(decls)), nil
}

func summarize(decls []Declaration) model.ComponentSummary {
	summary := model.ComponentSummary{
		Strings: make([]string, 0),
		Types:   model.NewFrequencyTable(),
	}
	for _, d := range decls {
		summary.Types.Add(d.Type)
		if d.HasText() {
			summary.Strings = append(summary.Strings, d.TextValue())
		}
	}
	summary.Count = len(summary.Types)
	return summary
}
