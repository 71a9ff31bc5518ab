package models

import (
	"encoding/json"
	"time"
)

// SectionCount is the number of section blocks every article carries
const SectionCount = 5

// Section is an ordinal sub-block of an article. It has no identity of its own
// and is replaced wholesale whenever the parent article is saved.
type Section struct {
	Subheading string   `json:"subheading"`
	Text       string   `json:"text"`
	Images     []string `json:"images"`
}

// IsBlank reports whether the section has no content at all
func (s Section) IsBlank() bool {
	return s.Subheading == "" && s.Text == "" && len(s.Images) == 0
}

// Article is a row of the articles table
type Article struct {
	ID          ID        `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TitleImage  string    `json:"title_image"`
	Sections    Sections  `json:"sections"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ArticleRow is the payload written on insert and update
type ArticleRow struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TitleImage  string   `json:"title_image"`
	Sections    Sections `json:"sections"`
}

// Sections is the jsonb sections column
type Sections []Section

// Normalized returns exactly SectionCount sections, padding missing ones with
// blank entries and truncating extra ones. Image lists are never nil so the
// stored column always holds [] rather than null.
func (s Sections) Normalized() Sections {
	out := make(Sections, SectionCount)
	for i := range out {
		if i < len(s) {
			out[i] = s[i]
		}
		if out[i].Images == nil {
			out[i].Images = []string{}
		}
	}
	return out
}

// Filled counts the sections that carry any content
func (s Sections) Filled() int {
	n := 0
	for _, sec := range s {
		if !sec.IsBlank() {
			n++
		}
	}
	return n
}

// UnmarshalJSON tolerates the older rows that stored null or omitted fields
func (s *Sections) UnmarshalJSON(data []byte) error {
	var raw []struct {
		Subheading *string  `json:"subheading"`
		Text       *string  `json:"text"`
		Images     []string `json:"images"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Sections, 0, len(raw))
	for _, r := range raw {
		var sec Section
		if r.Subheading != nil {
			sec.Subheading = *r.Subheading
		}
		if r.Text != nil {
			sec.Text = *r.Text
		}
		sec.Images = r.Images
		out = append(out, sec)
	}
	*s = out
	return nil
}
