package notion

import (
	"encoding/json"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// Property schema types understood by DecodeProperty.
const (
	PropTitle       = "title"
	PropText        = "text"
	PropSelect      = "select"
	PropMultiSelect = "multi_select"
	PropDate        = "date"
	PropFile        = "file"
	PropCheckbox    = "checkbox"
	PropURL         = "url"
	PropPerson      = "person"
)

// Segment is one run of a decorated property value,
// encoded as ["text", [["b"], ["d", {...}]]].
type Segment struct {
	Text        string
	Decorations []Decoration
}

// Decoration is a single format code attached to a segment.
type Decoration struct {
	Code    string
	Payload json.RawMessage
}

// UnmarshalJSON decodes the positional array form.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "segment is not an array")
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw[0], &s.Text); err != nil {
		return errors.Wrap(err, "segment text")
	}
	if len(raw) < 2 {
		return nil
	}

	var decos []json.RawMessage
	if err := json.Unmarshal(raw[1], &decos); err != nil {
		return errors.Wrap(err, "segment decorations")
	}
	for _, d := range decos {
		var parts []json.RawMessage
		if err := json.Unmarshal(d, &parts); err != nil || len(parts) == 0 {
			continue
		}

		var deco Decoration
		if err := json.Unmarshal(parts[0], &deco.Code); err != nil {
			continue
		}
		if len(parts) > 1 {
			deco.Payload = parts[1]
		}
		s.Decorations = append(s.Decorations, deco)
	}

	return nil
}

// DateValue is the payload of a "d" decoration.
type DateValue struct {
	Type      string `json:"type,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
}

// ParseSegments decodes a raw property value.
func ParseSegments(raw json.RawMessage) ([]Segment, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var segs []Segment
	if err := json.Unmarshal(raw, &segs); err != nil {
		return nil, errors.Wrap(err, "decode property segments")
	}
	return segs, nil
}

// PlainText concatenates the text of every segment.
func PlainText(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// SplitOptions splits a select value into its trimmed, non-empty options.
func SplitOptions(text string) []string {
	var out []string
	for _, opt := range strings.Split(text, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

// FindDate returns the first date decoration among segs.
func FindDate(segs []Segment) (*DateValue, error) {
	for _, s := range segs {
		for _, d := range s.Decorations {
			if d.Code != "d" || len(d.Payload) == 0 {
				continue
			}

			v := new(DateValue)
			if err := json.Unmarshal(d.Payload, v); err != nil {
				return nil, errors.Wrap(err, "decode date decoration")
			}
			return v, nil
		}
	}

	return nil, nil
}

// FirstLink returns the target of the first "a" decoration.
func FirstLink(segs []Segment) string {
	for _, s := range segs {
		for _, d := range s.Decorations {
			if d.Code != "a" || len(d.Payload) == 0 {
				continue
			}

			var link string
			if err := json.Unmarshal(d.Payload, &link); err == nil && link != "" {
				return link
			}
		}
	}

	return ""
}

// ImageProxyURL wraps a stored file url with the notion image endpoint
// so that signed attachment urls resolve for anonymous readers.
func ImageProxyURL(fileURL, blockID string) string {
	if fileURL == "" {
		return ""
	}
	if !strings.HasPrefix(fileURL, "http") {
		return fileURL
	}

	return "https://www.notion.so/image/" + url.QueryEscape(fileURL) +
		"?table=block&id=" + url.QueryEscape(blockID)
}
