package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"homefinder/internal/model"
	"homefinder/internal/utils"

	"go.uber.org/zap"
)

// Generator is the narrow contract over the external language service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// Interpreter confidence levels for the failure ladder. Lower rungs mean
// less trustworthy criteria.
const (
	confidenceUnconfigured = 0.5
	confidenceCallFailed   = 0.3
	confidenceParseFailed  = 0.2
	confidenceUnexpected   = 0.1
)

const parseQueryPrompt = `Parse the following apartment search query into structured JSON format.

Query: "%s"

Extract these fields if mentioned (use null for unspecified):
- minPrice: minimum rent price (integer)
- maxPrice: maximum rent price (integer)
- bedrooms: number of bedrooms (integer, use 0 for studio)
- bathrooms: number of bathrooms (integer)
- petFriendly: boolean if pets are mentioned
- parking: boolean if parking is mentioned
- location: area or neighborhood name (string)
- amenities: array of mentioned amenities (strings)
- proximity: proximity indicator like "near", "walking distance" (string)

Return ONLY valid JSON with no additional text. Example:
{"maxPrice": 1800, "bedrooms": 2, "petFriendly": true, "location": "downtown"}
`

// qualitativeAdjectives are descriptive terms whose presence suggests the
// user has a specific picture in mind, nudging confidence up.
var qualitativeAdjectives = []string{"luxury", "modern", "spacious"}

// QueryInterpreter turns raw query text into structured criteria plus a
// confidence value. It never fails outward: every error path degrades to the
// local fallback parser with a reduced confidence.
type QueryInterpreter struct {
	generator Generator
	logger    *zap.Logger
}

// NewQueryInterpreter creates an interpreter backed by the given language
// service. A nil generator behaves like an unconfigured one.
func NewQueryInterpreter(generator Generator, logger *zap.Logger) *QueryInterpreter {
	return &QueryInterpreter{generator: generator, logger: logger}
}

// Interpret parses the query into criteria with a confidence in [0,1]. The
// optional retrieval context enriches the prompt with example listings and
// similar past queries.
func (p *QueryInterpreter) Interpret(ctx context.Context, query string, retrieved *RetrievalContext) (*model.SearchCriteria, float64) {
	if p.generator == nil || !p.generator.IsEnabled() {
		p.logger.Warn("language service not configured, using fallback parsing",
			zap.String("query", query))
		return parseWithFallback(query), confidenceUnconfigured
	}

	prompt := buildPrompt(query, retrieved)

	response, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		p.logger.Error("language service call failed",
			zap.String("query", query),
			zap.Error(&InterpretationError{Err: err}))
		return parseWithFallback(query), confidenceCallFailed
	}

	criteria, err := parseCriteriaResponse(response)
	if err != nil {
		p.logger.Error("failed to parse language service response",
			zap.String("response", response),
			zap.Error(&InterpretationError{Err: err}))
		return parseWithFallback(query), confidenceParseFailed
	}
	if criteria == nil {
		// Decoded to nothing usable; treat as an unexpected response shape.
		p.logger.Error("unexpected language service response shape",
			zap.String("response", response))
		return parseWithFallback(query), confidenceUnexpected
	}

	confidence := calculateConfidence(criteria, query)

	p.logger.Info("query interpreted",
		zap.String("query", query),
		zap.Float64("confidence", confidence))

	return criteria, confidence
}

// buildPrompt embeds the raw query and, when retrieval context is present,
// up to 3 example listings and up to 3 similar past queries.
func buildPrompt(query string, retrieved *RetrievalContext) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(parseQueryPrompt, query))

	if retrieved == nil || len(retrieved.Listings) == 0 {
		return b.String()
	}

	b.WriteString("\n\nCONTEXT: Here are some similar apartments that might be relevant:\n")
	for i, scored := range retrieved.Listings {
		if i >= 3 {
			break
		}
		l := scored.Listing
		b.WriteString(fmt.Sprintf("- %s ($%d, %dBR in %s)\n",
			l.Title, l.Price, l.Bedrooms, l.Location.Neighborhood))
	}

	if len(retrieved.SimilarQueries) > 0 {
		b.WriteString("\nSimilar past queries:\n")
		for i, q := range retrieved.SimilarQueries {
			if i >= 3 {
				break
			}
			b.WriteString(fmt.Sprintf("- %q\n", q))
		}
	}

	b.WriteString("\nIMPORTANT: Be flexible with price ranges. If user says \"under $2000\" but similar apartments ")
	b.WriteString("cost more, consider suggesting a slightly higher range like $2500.\n")

	return b.String()
}

func parseCriteriaResponse(response string) (*model.SearchCriteria, error) {
	payload := utils.ExtractJSONObject(response)

	var criteria model.SearchCriteria
	if err := json.Unmarshal([]byte(payload), &criteria); err != nil {
		return nil, fmt.Errorf("invalid criteria payload: %w", err)
	}
	if criteria.Amenities == nil {
		criteria.Amenities = []string{}
	}
	return &criteria, nil
}

// calculateConfidence starts at 0.5 and rewards each extracted field plus
// qualitative language in the raw query, clamped to 1.0.
func calculateConfidence(criteria *model.SearchCriteria, query string) float64 {
	confidence := 0.5

	if criteria.Bedrooms != nil {
		confidence += 0.10
	}
	if criteria.MaxPrice != nil {
		confidence += 0.10
	}
	if criteria.Location != nil {
		confidence += 0.15
	}
	if criteria.PetFriendly != nil {
		confidence += 0.10
	}
	if criteria.Parking != nil {
		confidence += 0.05
	}

	queryLower := strings.ToLower(query)
	for _, adj := range qualitativeAdjectives {
		if strings.Contains(queryLower, adj) {
			confidence += 0.10
			break
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

var (
	bedroomsPattern  = regexp.MustCompile(`(\d+)\s*(?:bedroom|br|bed)`)
	bathroomsPattern = regexp.MustCompile(`(\d+)\s*(?:bathroom|bath|ba)`)
	maxPricePattern  = regexp.MustCompile(`(?:under|below|less than|max(?:imum)?)\s*\$?(\d+)`)
	minPricePattern  = regexp.MustCompile(`(?:over|above|more than|min(?:imum)?)\s*\$?(\d+)`)
)

// parseWithFallback is the deterministic keyword/regex extractor used when
// the language service is unavailable. It only ever produces values that
// literally appear in the query text.
func parseWithFallback(query string) *model.SearchCriteria {
	lowerQuery := strings.ToLower(query)

	criteria := &model.SearchCriteria{
		Bedrooms:  extractNumber(lowerQuery, bedroomsPattern),
		Bathrooms: extractNumber(lowerQuery, bathroomsPattern),
		MaxPrice:  extractNumber(lowerQuery, maxPricePattern),
		MinPrice:  extractNumber(lowerQuery, minPricePattern),
		Amenities: []string{},
	}

	if strings.Contains(lowerQuery, "pet") {
		t := true
		criteria.PetFriendly = &t
	}
	if strings.Contains(lowerQuery, "parking") || strings.Contains(lowerQuery, "garage") {
		t := true
		criteria.Parking = &t
	}

	switch {
	case strings.Contains(lowerQuery, "downtown"):
		loc := "downtown"
		criteria.Location = &loc
	case strings.Contains(lowerQuery, "university"):
		loc := "university"
		criteria.Location = &loc
	case strings.Contains(lowerQuery, "suburban"):
		loc := "suburban"
		criteria.Location = &loc
	}

	switch {
	case strings.Contains(lowerQuery, "walking distance"):
		prox := "walking distance"
		criteria.Proximity = &prox
	case strings.Contains(lowerQuery, "near"), strings.Contains(lowerQuery, "close"):
		prox := "near"
		criteria.Proximity = &prox
	}

	if strings.Contains(lowerQuery, "gym") {
		criteria.Amenities = []string{"gym"}
	}

	return criteria
}

func extractNumber(text string, pattern *regexp.Regexp) *int {
	matches := pattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return nil
	}
	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil
	}
	return &value
}
