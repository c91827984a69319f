package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"homefinder/internal/model"

	"go.uber.org/zap"
)

// defaultPaths are tried in order when no explicit listings file is
// configured.
var defaultPaths = []string{
	"listings.json",
	"data/listings.json",
	"/data/listings.json",
}

// Catalog is the read-only in-memory listing set. It is loaded once at
// startup and freely shared across sessions.
type Catalog struct {
	listings []model.Listing
	byID     map[string]model.Listing
}

// Load builds a catalog from the given file path. When path is empty the
// default locations are tried; when nothing can be read the embedded
// fallback data is used so the service still starts.
func Load(path string, logger *zap.Logger) *Catalog {
	paths := defaultPaths
	if path != "" {
		paths = append([]string{path}, defaultPaths...)
	}

	for _, p := range paths {
		listings, err := loadFile(p)
		if err != nil {
			logger.Debug("catalog file not usable", zap.String("path", p), zap.Error(err))
			continue
		}
		logger.Info("catalog loaded", zap.String("path", p), zap.Int("listings", len(listings)))
		return New(listings)
	}

	logger.Warn("no listings file found, using fallback catalog data")
	return New(fallbackListings())
}

// New builds a catalog from an in-memory listing slice.
func New(listings []model.Listing) *Catalog {
	byID := make(map[string]model.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	return &Catalog{listings: listings, byID: byID}
}

func loadFile(path string) ([]model.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse listings file %s: %w", path, err)
	}
	return listings, nil
}

// Listings returns all listings. Callers must not mutate the returned slice.
func (c *Catalog) Listings() []model.Listing {
	return c.listings
}

// Get returns the listing with the given id.
func (c *Catalog) Get(id string) (model.Listing, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// Size returns the number of listings in the catalog.
func (c *Catalog) Size() int {
	return len(c.listings)
}

func fallbackListings() []model.Listing {
	return []model.Listing{
		{
			ID:        "apt-fallback-001",
			Title:     "Downtown Studio",
			Price:     1200,
			Bedrooms:  0, // studio
			Bathrooms: 1,
			Location: model.Location{
				Address:      "100 Main St",
				Latitude:     40.7128,
				Longitude:    -74.0060,
				Neighborhood: "downtown",
			},
			PetFriendly:      false,
			ParkingAvailable: true,
			Amenities:        []string{"gym"},
			SquareFeet:       600,
			Available:        "2024-02-01",
		},
		{
			ID:        "apt-fallback-002",
			Title:     "Pet-Friendly 2BR",
			Price:     1800,
			Bedrooms:  2,
			Bathrooms: 2,
			Location: model.Location{
				Address:      "200 Oak Ave",
				Latitude:     40.7500,
				Longitude:    -73.9900,
				Neighborhood: "midtown",
			},
			PetFriendly:      true,
			ParkingAvailable: true,
			Amenities:        []string{"gym", "rooftop"},
			SquareFeet:       1100,
			Available:        "2024-02-15",
		},
	}
}
