package service

import (
	"context"
	"fmt"
	"time"

	"homefinder/internal/config"
	"homefinder/internal/model"

	"go.uber.org/zap"
)

// Indexer pushes listings into the vector store in small batches so a bulk
// load does not saturate the embedding backend.
type Indexer struct {
	retriever Retriever
	cfg       config.IndexingConfig
	timeout   time.Duration
	logger    *zap.Logger
}

func NewIndexer(retriever Retriever, cfg config.IndexingConfig, timeout time.Duration, logger *zap.Logger) *Indexer {
	return &Indexer{
		retriever: retriever,
		cfg:       cfg,
		timeout:   timeout,
		logger:    logger,
	}
}

// Index embeds and upserts every listing, batch by batch, pausing between
// batches. A failing listing is counted and skipped; the rest of the batch
// continues.
func (ix *Indexer) Index(listings []model.Listing) model.IndexResponse {
	resp := model.IndexResponse{Errors: []string{}}

	batchSize := ix.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < len(listings); start += batchSize {
		end := start + batchSize
		if end > len(listings) {
			end = len(listings)
		}

		ix.indexBatch(listings[start:end], &resp)

		if end < len(listings) && ix.cfg.BatchDelay > 0 {
			time.Sleep(ix.cfg.BatchDelay)
		}
	}

	ix.logger.Info("indexing finished",
		zap.Int("indexed", resp.Indexed),
		zap.Int("failed", resp.Failed))
	return resp
}

func (ix *Indexer) indexBatch(batch []model.Listing, resp *model.IndexResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), ix.timeout)
	defer cancel()

	for _, listing := range batch {
		if err := ix.retriever.UpsertListing(ctx, listing); err != nil {
			ix.logger.Warn("failed to index listing", zap.String("id", listing.ID), zap.Error(err))
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", listing.ID, err))
			continue
		}
		resp.Indexed++
	}
}
