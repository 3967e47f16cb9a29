package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Reserved keys of the project summary document.
const (
	KeyProjectName = "**Project Name"
	KeyScreenCount = "*Number of Screens"
	KeyMediaAssets = "*Media Assets"
)

// ProjectSummary is the per-project report document.
// Screens are stored by name next to the reserved keys, so the document is
// serialized through a map rather than struct tags.
type ProjectSummary struct {
	// Name is the project name read from project.properties.
	Name string

	// ScreenNames lists the screens in archive order. Its length is the
	// screen count written to the report.
	ScreenNames []string

	// Screens maps a screen name to its summary.
	Screens map[string]ScreenSummary

	// Media lists the media asset file names in archive order.
	Media []string
}

// NewProjectSummary returns an empty summary for the named project.
func NewProjectSummary(name string) *ProjectSummary {
	return &ProjectSummary{
		Name:        name,
		ScreenNames: []string{},
		Screens:     make(map[string]ScreenSummary),
		Media:       []string{},
	}
}

// AddScreen records the summary of a screen.
func (p *ProjectSummary) AddScreen(name string, s ScreenSummary) {
	if p.Screens == nil {
		p.Screens = make(map[string]ScreenSummary)
	}
	p.ScreenNames = append(p.ScreenNames, name)
	p.Screens[name] = s
}

// ScreenCount returns the number of screens found in the archive.
func (p *ProjectSummary) ScreenCount() int {
	return len(p.ScreenNames)
}

// SortedScreenNames returns the distinct screen names in ascending order.
func (p *ProjectSummary) SortedScreenNames() []string {
	names := make([]string, 0, len(p.Screens))
	for name := range p.Screens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MarshalJSON implements json.Marshaler.
func (p ProjectSummary) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Screens)+3)
	for name, screen := range p.Screens {
		doc[name] = screen
	}
	media := p.Media
	if media == nil {
		media = []string{}
	}
	doc[KeyProjectName] = p.Name
	doc[KeyScreenCount] = len(p.ScreenNames)
	doc[KeyMediaAssets] = media
	return marshalNoEscape(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
// Screen order is not part of the document, so ScreenNames comes back
// sorted.
func (p *ProjectSummary) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := NewProjectSummary("")
	screenCount := -1
	for key, raw := range doc {
		switch key {
		case KeyProjectName:
			if err := json.Unmarshal(raw, &out.Name); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case KeyScreenCount:
			if err := json.Unmarshal(raw, &screenCount); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case KeyMediaAssets:
			if err := json.Unmarshal(raw, &out.Media); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		default:
			var screen ScreenSummary
			if err := json.Unmarshal(raw, &screen); err != nil {
				return fmt.Errorf("screen %s: %w", key, err)
			}
			out.Screens[key] = screen
		}
	}

	out.ScreenNames = out.SortedScreenNames()
	// Duplicate screen names collapse into one map entry; pad with the last
	// name so the count survives a round trip.
	for len(out.ScreenNames) > 0 && len(out.ScreenNames) < screenCount {
		out.ScreenNames = append(out.ScreenNames, out.ScreenNames[len(out.ScreenNames)-1])
	}
	if out.Media == nil {
		out.Media = []string{}
	}
	*p = *out
	return nil
}
