package service

import (
	"strings"

	"homefinder/internal/model"
)

// nearbyNeighborhoods maps a neighborhood to others considered close enough
// to earn partial location credit during scoring.
var nearbyNeighborhoods = map[string][]string{
	"downtown":    {"financial district", "government center", "theater district"},
	"back bay":    {"south end", "copley", "newbury street"},
	"cambridge":   {"somerville", "porter square", "davis square"},
	"south end":   {"back bay", "roxbury"},
	"seaport":     {"fort point", "financial district"},
	"beacon hill": {"north end", "downtown"},
	"north end":   {"beacon hill", "charlestown"},
}

// Matches reports whether a listing satisfies every present field of the
// criteria. Empty criteria matches everything; present fields are hard AND
// constraints.
func Matches(listing model.Listing, criteria *model.SearchCriteria) bool {
	if criteria.IsEmpty() {
		return true
	}

	if criteria.MinPrice != nil && listing.Price < *criteria.MinPrice {
		return false
	}
	if criteria.MaxPrice != nil && listing.Price > *criteria.MaxPrice {
		return false
	}

	if criteria.Bedrooms != nil && listing.Bedrooms != *criteria.Bedrooms {
		return false
	}

	if criteria.Bathrooms != nil && listing.Bathrooms < *criteria.Bathrooms {
		return false
	}

	// Requesting true requires the listing flag; requesting false imposes
	// no constraint.
	if criteria.PetFriendly != nil && *criteria.PetFriendly && !listing.PetFriendly {
		return false
	}
	if criteria.Parking != nil && *criteria.Parking && !listing.ParkingAvailable {
		return false
	}

	if criteria.Location != nil {
		queryLocation := strings.ToLower(*criteria.Location)
		neighborhood := strings.ToLower(listing.Location.Neighborhood)
		address := strings.ToLower(listing.Location.Address)

		if !strings.Contains(neighborhood, queryLocation) && !strings.Contains(address, queryLocation) {
			return false
		}
	}

	if len(criteria.Amenities) > 0 {
		for _, requested := range criteria.Amenities {
			if !hasAmenity(listing, requested) {
				return false
			}
		}
	}

	return true
}

func hasAmenity(listing model.Listing, requested string) bool {
	want := strings.ToLower(requested)
	for _, amenity := range listing.Amenities {
		if strings.Contains(strings.ToLower(amenity), want) {
			return true
		}
	}
	return false
}

// FieldScore computes the normalized partial-credit match between a listing
// and the present criteria fields, ignoring semantics. A criteria with no
// present fields scores 0.
func FieldScore(listing model.Listing, criteria *model.SearchCriteria) float64 {
	score := 0.0
	presentFields := 0

	if criteria.MaxPrice != nil {
		presentFields++
		if listing.Price <= *criteria.MaxPrice {
			// Listings further under budget earn more credit.
			priceRatio := float64(listing.Price) / float64(*criteria.MaxPrice)
			if credit := 1.5 - priceRatio; credit > 0 {
				score += credit
			}
		}
	}

	if criteria.Bedrooms != nil {
		presentFields++
		if listing.Bedrooms == *criteria.Bedrooms {
			score += 1.0
		}
	}

	if criteria.PetFriendly != nil {
		presentFields++
		if listing.PetFriendly == *criteria.PetFriendly {
			score += 1.0
		}
	}

	if criteria.Parking != nil {
		presentFields++
		if listing.ParkingAvailable == *criteria.Parking {
			score += 1.0
		}
	}

	if criteria.Location != nil {
		presentFields++
		target := strings.ToLower(*criteria.Location)
		neighborhood := strings.ToLower(listing.Location.Neighborhood)

		if strings.Contains(neighborhood, target) || strings.Contains(target, neighborhood) {
			score += 1.0
		} else if isNearbyNeighborhood(neighborhood, target) {
			score += 0.5
		}
	}

	if len(criteria.Amenities) > 0 {
		presentFields++
		matched := 0
		for _, requested := range criteria.Amenities {
			if hasAmenity(listing, requested) {
				matched++
			}
		}
		score += float64(matched) / float64(len(criteria.Amenities))
	}

	if presentFields == 0 {
		return 0
	}
	return score / float64(presentFields)
}

func isNearbyNeighborhood(a, b string) bool {
	for _, n := range nearbyNeighborhoods[a] {
		if n == b {
			return true
		}
	}
	for _, n := range nearbyNeighborhoods[b] {
		if n == a {
			return true
		}
	}
	return false
}
