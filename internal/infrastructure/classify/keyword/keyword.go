package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

// Entry is one (category, keywords) row. Table order is the tie-break when
// categories share vocabulary, so it is part of the contract.
type Entry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultTable is the built-in keyword table, in priority order. "game" and
// "team" sit under Entertainment, which is why Entertainment precedes Art and
// Travel despite the overlap with their vocabularies.
func DefaultTable() []Entry {
	return []Entry{
		{Name: "Food", Keywords: []string{"recipe", "cook", "ingredient", "tsp", "baking", "restaurant", "meal", "delicious"}},
		{Name: "Fashion", Keywords: []string{"fashion", "outfit", "dress", "wardrobe", "clothing", "styling"}},
		{Name: "Home", Keywords: []string{"decor", "interior", "furniture", "renovation", "apartment", "garden"}},
		{Name: "Beauty", Keywords: []string{"makeup", "skincare", "cosmetic", "serum", "lipstick", "haircare"}},
		{Name: "Fitness", Keywords: []string{"workout", "gym", "yoga", "cardio", "protein", "exercise"}},
		{Name: "Education", Keywords: []string{"school", "study", "course", "exam", "lecture", "tutorial", "homework"}},
		{Name: "Quotes", Keywords: []string{"quote", "motivation", "inspiration", "wisdom", "mindset"}},
		{Name: "Music", Keywords: []string{"song", "album", "artist", "playlist", "lyrics", "concert"}},
		{Name: "Entertainment", Keywords: []string{"movie", "show", "series", "episode", "sports", "game", "team", "player"}},
		{Name: "Art", Keywords: []string{"painting", "sketch", "illustration", "gallery", "artwork", "canvas"}},
		{Name: "Travel", Keywords: []string{"flight", "hotel", "trip", "airport", "itinerary", "passport", "beach"}},
	}
}

// Classifier is the pure keyword fallback. It guarantees a category name for
// any input: the first table entry with a keyword hit wins, the catch-all
// otherwise. The returned name is a candidate; the caller resolves it through
// the category store.
type Classifier struct {
	table []Entry
}

func New(table []Entry) *Classifier {
	if len(table) == 0 {
		table = DefaultTable()
	}
	return &Classifier{table: table}
}

// NewFromFile loads a YAML table override ([{name, keywords}] in priority
// order). An empty path yields the built-in table.
func NewFromFile(path string) (*Classifier, error) {
	if path == "" {
		return New(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	var table []Entry
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	for _, entry := range table {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("keyword table entry with empty name")
		}
	}
	return New(table), nil
}

func (c *Classifier) Classify(_ context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, entry := range c.table {
		for _, kw := range entry.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return entry.Name, nil
			}
		}
	}
	return domain.CatchAllCategory, nil
}
