package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"homefinder/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsEnabled() bool
}

// VectorStore is the narrow contract over the external vector index.
type VectorStore interface {
	UpsertListing(ctx context.Context, pointID string, listing model.Listing, embedding []float32) error
	NearestListings(ctx context.Context, embedding []float32, limit int) ([]model.ScoredListing, error)
	UpsertQuery(ctx context.Context, pointID, queryText string, resultCount int, embedding []float32) error
	NearestQueries(ctx context.Context, embedding []float32, limit int, minScore float64) ([]string, error)
}

// Retriever is the semantic retrieval client consumed by the orchestrator.
type Retriever interface {
	NearestListings(ctx context.Context, query string, limit int) ([]model.ScoredListing, error)
	NearestPastQueries(ctx context.Context, query string, limit int, minScore float64) ([]string, error)
	UpsertListing(ctx context.Context, listing model.Listing) error
	StoreQuery(ctx context.Context, query string, resultCount int) error
}

// SemanticRetriever composes the embedding service, a shared embedding
// cache, and the vector store. Embeddings are deterministic for the same
// text, so concurrent last-writer-wins cache inserts are safe.
type SemanticRetriever struct {
	embedder Embedder
	store    VectorStore
	cache    sync.Map // text -> []float32
	logger   *zap.Logger
}

// NewSemanticRetriever creates a retriever over the given embedder and store
func NewSemanticRetriever(embedder Embedder, store VectorStore, logger *zap.Logger) *SemanticRetriever {
	return &SemanticRetriever{embedder: embedder, store: store, logger: logger}
}

// PointID maps an external listing or query id to its vector store point id.
// The mapping is deterministic so repeated upserts of the same id land on
// the same point.
func PointID(externalID string) string {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(externalID)).String()
}

func (r *SemanticRetriever) embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := r.cache.Load(text); ok {
		return cached.([]float32), nil
	}

	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	r.cache.Store(text, vector)
	return vector, nil
}

// NearestListings returns up to limit listings most similar to the query
// text, scored in [0,1].
func (r *SemanticRetriever) NearestListings(ctx context.Context, query string, limit int) ([]model.ScoredListing, error) {
	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.store.NearestListings(ctx, vector, limit)
}

// NearestPastQueries returns the text of past successful queries similar to
// the given query.
func (r *SemanticRetriever) NearestPastQueries(ctx context.Context, query string, limit int, minScore float64) ([]string, error) {
	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.store.NearestQueries(ctx, vector, limit, minScore)
}

// UpsertListing embeds the listing's text representation and writes it to
// the vector store. Upserting the same listing twice is idempotent.
func (r *SemanticRetriever) UpsertListing(ctx context.Context, listing model.Listing) error {
	text := ListingText(listing)

	vector, err := r.embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed listing %s: %w", listing.ID, err)
	}

	return r.store.UpsertListing(ctx, PointID(listing.ID), listing, vector)
}

// StoreQuery records a successful query for later retrieval. Queries with no
// results are not worth learning from and are skipped.
func (r *SemanticRetriever) StoreQuery(ctx context.Context, query string, resultCount int) error {
	if resultCount <= 0 {
		return nil
	}

	vector, err := r.embed(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	return r.store.UpsertQuery(ctx, PointID(query), query, resultCount, vector)
}

// ListingText builds the natural-language representation of a listing used
// for embedding.
func ListingText(l model.Listing) string {
	var b strings.Builder

	b.WriteString(l.Title)
	b.WriteString(". ")
	fmt.Fprintf(&b, "%d bedroom %d bathroom apartment in %s. ",
		l.Bedrooms, l.Bathrooms, l.Location.Neighborhood)
	fmt.Fprintf(&b, "Price: $%d per month. ", l.Price)

	if l.PetFriendly {
		b.WriteString("Pet friendly. ")
	}
	if l.ParkingAvailable {
		b.WriteString("Parking available. ")
	}
	if len(l.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities: %s. ", strings.Join(l.Amenities, ", "))
	}
	if l.SquareFeet > 0 {
		fmt.Fprintf(&b, "%d square feet. ", l.SquareFeet)
	}

	b.WriteString("Located at ")
	b.WriteString(l.Location.Address)

	return b.String()
}
