package model

// Listing represents an apartment listing. Listings are loaded once at
// startup and never mutated.
type Listing struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Price            int      `json:"price"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        int      `json:"bathrooms"`
	Location         Location `json:"location"`
	PetFriendly      bool     `json:"petFriendly"`
	ParkingAvailable bool     `json:"parkingAvailable"`
	Amenities        []string `json:"amenities"`
	SquareFeet       int      `json:"squareFeet"`
	Available        string   `json:"available"`
	Photos           []string `json:"photos,omitempty"`
}

// Location holds the address and coordinates of a listing.
type Location struct {
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Neighborhood string  `json:"neighborhood"`
}

// ScoredListing pairs a listing with its semantic similarity score in [0,1].
type ScoredListing struct {
	Listing Listing `json:"listing"`
	Score   float64 `json:"score"`
}
