package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

func TestClassifyMatchesTableOrder(t *testing.T) {
	c := New(nil)
	cases := []struct {
		name string
		text string
		want string
	}{
		{"food", "check out this amazing pasta recipe foodie", "Food"},
		{"fitness", "leg day workout routine", "Fitness"},
		{"entertainment owns game", "the team won the game last night", "Entertainment"},
		{"travel", "flight SFO-JFK and hotel booking", "Travel"},
		{"quotes", "daily motivation for your mindset", "Quotes"},
		{"case insensitive", "NEW WORKOUT PLAN", "Fitness"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tc.text)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyEarlierEntryWinsOnSharedVocabulary(t *testing.T) {
	c := New([]Entry{
		{Name: "First", Keywords: []string{"shared"}},
		{Name: "Second", Keywords: []string{"shared", "only-second"}},
	})
	got, err := c.Classify(context.Background(), "some shared vocabulary")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != "First" {
		t.Fatalf("expected table order to break the tie, got %q", got)
	}
}

func TestClassifyReturnsCatchAllOnNoMatch(t *testing.T) {
	c := New(nil)
	got, err := c.Classify(context.Background(), "q3 earnings report draft v2")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != domain.CatchAllCategory {
		t.Fatalf("Classify() = %q, want %q", got, domain.CatchAllCategory)
	}
}

func TestNewFromFileOverridesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	data := "- name: Receipts\n  keywords: [invoice, total, subtotal]\n- name: Tickets\n  keywords: [boarding, seat]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	c, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	got, err := c.Classify(context.Background(), "your invoice total is 12.40")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != "Receipts" {
		t.Fatalf("Classify() = %q, want Receipts", got)
	}
}

func TestNewFromFileRejectsEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, []byte("- name: \"\"\n  keywords: [x]\n"), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected error for empty category name")
	}
}

func TestNewFromFileEmptyPathUsesDefaults(t *testing.T) {
	c, err := NewFromFile("")
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	got, _ := c.Classify(context.Background(), "new recipe drop")
	if got != "Food" {
		t.Fatalf("expected default table, got %q", got)
	}
}
