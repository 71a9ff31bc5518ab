package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestArticleRowSectionsColumn(t *testing.T) {
	row := ArticleRow{
		Title:       "Title",
		Description: "Description",
		TitleImage:  "https://example.com/title.png",
		Sections:    Sections{{Subheading: "One", Text: "<p>1</p>", Images: []string{"https://example.com/1.png"}}, {Subheading: "Two"}}.Normalized(),
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Failed to marshal ArticleRow: %v", err)
	}

	var result struct {
		TitleImage string            `json:"title_image"`
		Sections   []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if result.TitleImage != "https://example.com/title.png" {
		t.Errorf("Expected title_image to be set, got %q", result.TitleImage)
	}
	if len(result.Sections) != SectionCount {
		t.Fatalf("Expected %d sections, got %d", SectionCount, len(result.Sections))
	}
	if got := string(result.Sections[4]); got != `{"subheading":"","text":"","images":[]}` {
		t.Errorf("Expected blank section with empty image list, got %s", got)
	}
}

func TestSectionsNormalizedTruncates(t *testing.T) {
	long := make(Sections, SectionCount+2)
	long[SectionCount+1].Subheading = "dropped"
	if got := len(long.Normalized()); got != SectionCount {
		t.Errorf("Expected %d sections, got %d", SectionCount, got)
	}
}

func TestSectionsToleratesNulls(t *testing.T) {
	var a Article
	data := `{"id":"7","title":"T","sections":[{"subheading":null,"text":"<p>x</p>","images":null}],"created_at":"2024-05-01T10:00:00Z"}`
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		t.Fatalf("Failed to unmarshal Article: %v", err)
	}
	if len(a.Sections) != 1 || a.Sections[0].Text != "<p>x</p>" || a.Sections[0].Subheading != "" {
		t.Errorf("Unexpected sections: %+v", a.Sections)
	}
	if a.Sections.Filled() != 1 {
		t.Errorf("Expected one filled section, got %d", a.Sections.Filled())
	}
	if !a.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected created_at %v", a.CreatedAt)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	var nilSession *Session
	if !nilSession.Expired(now) {
		t.Error("Expected nil session to be expired")
	}
	if (&Session{}).Expired(now) {
		t.Error("Expected session without expiry to never expire")
	}
	if !(&Session{ExpiresAt: now.Unix()}).Expired(now) {
		t.Error("Expected session at its expiry to be expired")
	}
	if (&Session{ExpiresAt: now.Unix() + 60}).Expired(now) {
		t.Error("Expected future session to be valid")
	}
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var rows []Magazine
	data := `[{"id":1,"title":"a"},{"id":"5d2c1e0a-4b1f-4c55-9a51-5f0f6b2d7e11","title":"b"},{"id":null,"title":"c"}]`
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		t.Fatalf("Failed to unmarshal magazines: %v", err)
	}
	if rows[0].ID != "1" {
		t.Errorf("Expected numeric id to decode as \"1\", got %q", rows[0].ID)
	}
	if rows[1].ID != "5d2c1e0a-4b1f-4c55-9a51-5f0f6b2d7e11" {
		t.Errorf("Unexpected uuid id %q", rows[1].ID)
	}
	if rows[2].ID != "" {
		t.Errorf("Expected null id to be empty, got %q", rows[2].ID)
	}

	var a Article
	if err := json.Unmarshal([]byte(`{"id":42,"sections":[]}`), &a); err != nil {
		t.Fatalf("Failed to unmarshal article: %v", err)
	}
	if a.ID.String() != "42" {
		t.Errorf("Expected article id 42, got %q", a.ID)
	}

	if err := json.Unmarshal([]byte(`{"id":true}`), &a); err == nil {
		t.Error("Expected boolean id to be rejected")
	}
}
