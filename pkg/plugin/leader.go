package plugin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
)

// Wire names of the fields the crawler interprets.
const (
	FieldWikipediaURL   = "wikipedia_url"
	FieldFirstParagraph = "first_paragraph"
)

// Leader is one record from the leaders endpoint.
//
// Fields holds every upstream field verbatim (numbers as json.Number) except the
// two the crawler interprets, which are lifted into pointers so that "absent" and
// "empty" stay distinguishable. A JSON null for either counts as absent.
type Leader struct {
	Fields         map[string]any
	WikipediaURL   *string
	FirstParagraph *string
}

// ID returns the upstream identifier, if any.
func (l Leader) ID() string {
	return l.stringField("id")
}

// Name returns a display name built from first_name/last_name or name.
func (l Leader) Name() string {
	full := strings.TrimSpace(l.stringField("first_name") + " " + l.stringField("last_name"))
	if full != "" {
		return full
	}
	return l.stringField("name")
}

// BirthDate returns the birth_date field, if any.
func (l Leader) BirthDate() string {
	return l.stringField("birth_date")
}

func (l Leader) stringField(key string) string {
	switch v := l.Fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// SetFirstParagraph attaches the enrichment text.
func (l *Leader) SetFirstParagraph(text string) {
	l.FirstParagraph = &text
}

func (l Leader) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Fields)+2)
	maps.Copy(out, l.Fields)
	if l.WikipediaURL != nil {
		out[FieldWikipediaURL] = *l.WikipediaURL
	}
	if l.FirstParagraph != nil {
		out[FieldFirstParagraph] = *l.FirstParagraph
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (l *Leader) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("leader record is null")
	}

	*l = Leader{}
	for key, value := range raw {
		switch key {
		case FieldWikipediaURL, FieldFirstParagraph:
			if value == nil {
				continue
			}
			s, ok := value.(string)
			if !ok {
				// Not usable as text; keep it verbatim with the other fields.
				l.setField(key, value)
				continue
			}
			if key == FieldWikipediaURL {
				l.WikipediaURL = &s
			} else {
				l.FirstParagraph = &s
			}
		default:
			l.setField(key, value)
		}
	}
	return nil
}

func (l *Leader) setField(key string, value any) {
	if l.Fields == nil {
		l.Fields = make(map[string]any)
	}
	l.Fields[key] = value
}

// DecodeLeaders decodes a JSON array of leader objects.
func DecodeLeaders(data []byte) ([]Leader, error) {
	var leaders []Leader
	if err := json.Unmarshal(data, &leaders); err != nil {
		return nil, fmt.Errorf("decode leaders: %w", err)
	}
	if leaders == nil {
		leaders = []Leader{}
	}
	return leaders, nil
}
