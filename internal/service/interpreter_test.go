package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"homefinder/internal/model"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	response   string
	err        error
	enabled    bool
	calls      int
	lastPrompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.response, g.err
}

func (g *fakeGenerator) IsEnabled() bool { return g.enabled }

func TestInterpret_FallbackWithoutGenerator(t *testing.T) {
	interpreter := NewQueryInterpreter(nil, zap.NewNop())

	criteria, confidence := interpreter.Interpret(context.Background(),
		"2 bedroom pet friendly apartment near downtown under $1500", nil)

	if confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", confidence)
	}
	if criteria.Bedrooms == nil || *criteria.Bedrooms != 2 {
		t.Errorf("Bedrooms = %v, want 2", criteria.Bedrooms)
	}
	if criteria.MaxPrice == nil || *criteria.MaxPrice != 1500 {
		t.Errorf("MaxPrice = %v, want 1500", criteria.MaxPrice)
	}
	if criteria.PetFriendly == nil || !*criteria.PetFriendly {
		t.Errorf("PetFriendly = %v, want true", criteria.PetFriendly)
	}
	if criteria.Location == nil || *criteria.Location != "downtown" {
		t.Errorf("Location = %v, want downtown", criteria.Location)
	}
	if criteria.Proximity == nil || *criteria.Proximity != "near" {
		t.Errorf("Proximity = %v, want near", criteria.Proximity)
	}
}

func TestInterpret_FallbackPatterns(t *testing.T) {
	interpreter := NewQueryInterpreter(nil, zap.NewNop())

	tests := []struct {
		name  string
		query string
		check func(t *testing.T, c *model.SearchCriteria)
	}{
		{
			name:  "empty query yields empty criteria",
			query: "",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if !c.IsEmpty() {
					t.Error("expected empty criteria")
				}
				if c.Amenities == nil {
					t.Error("Amenities should never be nil")
				}
			},
		},
		{
			name:  "min price phrasing",
			query: "apartments over $900",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if c.MinPrice == nil || *c.MinPrice != 900 {
					t.Errorf("MinPrice = %v, want 900", c.MinPrice)
				}
			},
		},
		{
			name:  "short bedroom form",
			query: "3br near university",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if c.Bedrooms == nil || *c.Bedrooms != 3 {
					t.Errorf("Bedrooms = %v, want 3", c.Bedrooms)
				}
				if c.Location == nil || *c.Location != "university" {
					t.Errorf("Location = %v, want university", c.Location)
				}
			},
		},
		{
			name:  "garage implies parking",
			query: "place with a garage",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if c.Parking == nil || !*c.Parking {
					t.Errorf("Parking = %v, want true", c.Parking)
				}
			},
		},
		{
			name:  "walking distance wins over near",
			query: "within walking distance of downtown",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if c.Proximity == nil || *c.Proximity != "walking distance" {
					t.Errorf("Proximity = %v, want walking distance", c.Proximity)
				}
			},
		},
		{
			name:  "gym amenity",
			query: "studio with gym",
			check: func(t *testing.T, c *model.SearchCriteria) {
				if len(c.Amenities) != 1 || c.Amenities[0] != "gym" {
					t.Errorf("Amenities = %v, want [gym]", c.Amenities)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria, confidence := interpreter.Interpret(context.Background(), tt.query, nil)
			if confidence != 0.5 {
				t.Errorf("confidence = %v, want 0.5", confidence)
			}
			tt.check(t, criteria)
		})
	}
}

func TestInterpret_GeneratorFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{enabled: true, err: errors.New("boom")}
	interpreter := NewQueryInterpreter(gen, zap.NewNop())

	criteria, confidence := interpreter.Interpret(context.Background(), "2 bedroom downtown", nil)

	if confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", confidence)
	}
	// The fallback still extracts what it can.
	if criteria.Bedrooms == nil || *criteria.Bedrooms != 2 {
		t.Errorf("Bedrooms = %v, want 2", criteria.Bedrooms)
	}
}

func TestInterpret_UnparseableResponseDegrades(t *testing.T) {
	gen := &fakeGenerator{enabled: true, response: "I cannot help with that."}
	interpreter := NewQueryInterpreter(gen, zap.NewNop())

	_, confidence := interpreter.Interpret(context.Background(), "2 bedroom downtown", nil)

	if confidence != 0.2 {
		t.Errorf("confidence = %v, want 0.2", confidence)
	}
}

func TestInterpret_ParsesFencedResponse(t *testing.T) {
	gen := &fakeGenerator{
		enabled:  true,
		response: "```json\n{\"bedrooms\": 2, \"maxPrice\": 1800, \"location\": \"downtown\"}\n```",
	}
	interpreter := NewQueryInterpreter(gen, zap.NewNop())

	criteria, confidence := interpreter.Interpret(context.Background(), "2 bedroom downtown under 1800", nil)

	if criteria.Bedrooms == nil || *criteria.Bedrooms != 2 {
		t.Errorf("Bedrooms = %v, want 2", criteria.Bedrooms)
	}
	if criteria.MaxPrice == nil || *criteria.MaxPrice != 1800 {
		t.Errorf("MaxPrice = %v, want 1800", criteria.MaxPrice)
	}
	// 0.5 base + bedrooms 0.10 + maxPrice 0.10 + location 0.15
	if !floatEq(confidence, 0.85) {
		t.Errorf("confidence = %v, want 0.85", confidence)
	}
}

func TestInterpret_ConfidenceClampedToOne(t *testing.T) {
	gen := &fakeGenerator{
		enabled: true,
		response: `{"bedrooms": 2, "maxPrice": 1800, "location": "downtown",
			"petFriendly": true, "parking": true}`,
	}
	interpreter := NewQueryInterpreter(gen, zap.NewNop())

	_, confidence := interpreter.Interpret(context.Background(),
		"luxury 2 bedroom downtown with parking, pets ok, under 1800", nil)

	if confidence != 1.0 {
		t.Errorf("confidence = %v, want clamp at 1.0", confidence)
	}
}

func TestBuildPrompt_ContextCaps(t *testing.T) {
	retrieved := &RetrievalContext{
		SimilarQueries: []string{"q1", "q2", "q3", "q4"},
	}
	for i := 0; i < 5; i++ {
		retrieved.Listings = append(retrieved.Listings, model.ScoredListing{
			Listing: makeListing("ctx", 1000, 1, "downtown"),
		})
	}

	prompt := buildPrompt("cheap apartment", retrieved)

	if !strings.Contains(prompt, `Query: "cheap apartment"`) {
		t.Error("prompt missing the raw query")
	}
	if got := strings.Count(prompt, "- Listing ctx"); got != 3 {
		t.Errorf("prompt contains %d context listings, want 3", got)
	}
	if strings.Contains(prompt, `"q4"`) {
		t.Error("prompt should cap similar queries at 3")
	}
}

func TestBuildPrompt_NoContext(t *testing.T) {
	prompt := buildPrompt("cheap apartment", &RetrievalContext{})

	if strings.Contains(prompt, "CONTEXT") {
		t.Error("empty retrieval context should add no context section")
	}
}
