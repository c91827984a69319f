package model

// SearchCriteria holds the structured constraints extracted from a query.
// Nil fields are unconstrained. An empty Amenities list imposes no amenity
// constraint. Instances are never mutated once produced; Relaxed returns a
// derived copy.
type SearchCriteria struct {
	MinPrice    *int     `json:"minPrice,omitempty"`
	MaxPrice    *int     `json:"maxPrice,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
	PetFriendly *bool    `json:"petFriendly,omitempty"`
	Parking     *bool    `json:"parking,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Proximity   *string  `json:"proximity,omitempty"`

	// SemanticScores maps listing id to semantic similarity. Absent until
	// the hybrid stage attaches it.
	SemanticScores map[string]float64 `json:"-"`
}

// IsEmpty reports whether no field constrains the search.
func (c *SearchCriteria) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.MinPrice == nil &&
		c.MaxPrice == nil &&
		c.Bedrooms == nil &&
		c.Bathrooms == nil &&
		c.PetFriendly == nil &&
		c.Parking == nil &&
		c.Location == nil &&
		len(c.Amenities) == 0
}

// HasSemanticScores reports whether semantic scores are attached.
func (c *SearchCriteria) HasSemanticScores() bool {
	return c != nil && len(c.SemanticScores) > 0
}

// SemanticScore returns the semantic score for a listing id, or 0 when the
// listing did not come from the semantic candidate set.
func (c *SearchCriteria) SemanticScore(listingID string) float64 {
	if c == nil || c.SemanticScores == nil {
		return 0
	}
	return c.SemanticScores[listingID]
}

// Relaxed returns a derived criteria with the price band widened and the
// location constraint dropped. All other fields are carried over unchanged.
// Factors are applied with integer truncation.
func (c *SearchCriteria) Relaxed(maxPriceFactor, minPriceFactor float64) *SearchCriteria {
	relaxed := &SearchCriteria{
		Bedrooms:       c.Bedrooms,
		Bathrooms:      c.Bathrooms,
		PetFriendly:    c.PetFriendly,
		Parking:        c.Parking,
		Amenities:      c.Amenities,
		Proximity:      c.Proximity,
		SemanticScores: c.SemanticScores,
	}
	if c.MaxPrice != nil {
		v := int(float64(*c.MaxPrice) * maxPriceFactor)
		relaxed.MaxPrice = &v
	}
	if c.MinPrice != nil {
		v := int(float64(*c.MinPrice) * minPriceFactor)
		relaxed.MinPrice = &v
	}
	return relaxed
}
