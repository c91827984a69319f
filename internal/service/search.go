package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"homefinder/internal/catalog"
	"homefinder/internal/config"
	"homefinder/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RetrievalContext is the semantic context gathered for one session: scored
// candidate listings plus the text of similar past queries.
type RetrievalContext struct {
	Listings       []model.ScoredListing
	SimilarQueries []string
}

// Interpreter is the contract the orchestrator uses to turn raw text into
// structured criteria.
type Interpreter interface {
	Interpret(ctx context.Context, query string, retrieved *RetrievalContext) (*model.SearchCriteria, float64)
}

type sessionStage int

const (
	stageReceived sessionStage = iota
	stageRetrieval
	stageInterpretation
	stageRanking
)

func (s sessionStage) String() string {
	switch s {
	case stageReceived:
		return "received"
	case stageRetrieval:
		return "retrieval"
	case stageInterpretation:
		return "interpretation"
	case stageRanking:
		return "ranking"
	}
	return "unknown"
}

// sessionState tracks one in-flight request. At most one live state exists
// per session id.
type sessionState struct {
	request   *model.SearchRequest
	retrieved *RetrievalContext
	stage     sessionStage
	started   time.Time
}

// SearchService drives one request through retrieval, interpretation and
// ranking, with a per-stage timeout and a fallback at every stage. Every
// session runs as its own task; the shared catalog is immutable and the
// session table guards against concurrent reuse of a session id.
type SearchService struct {
	catalog     *catalog.Catalog
	retriever   Retriever
	interpreter Interpreter
	ranker      *HybridRanker
	searchCfg   config.SearchConfig
	timeouts    config.TimeoutConfig
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewSearchService wires the orchestrator from its collaborators
func NewSearchService(
	cat *catalog.Catalog,
	retriever Retriever,
	interpreter Interpreter,
	ranker *HybridRanker,
	searchCfg config.SearchConfig,
	timeouts config.TimeoutConfig,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		catalog:     cat,
		retriever:   retriever,
		interpreter: interpreter,
		ranker:      ranker,
		searchCfg:   searchCfg,
		timeouts:    timeouts,
		logger:      logger,
		sessions:    make(map[string]*sessionState),
	}
}

// Search runs one complete session. It never returns an error for
// collaborator failures; those degrade the result. ErrSessionActive is
// returned when the session id is already in flight.
func (s *SearchService) Search(req *model.SearchRequest) (*model.SearchResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := s.beginSession(sessionID, req); err != nil {
		return nil, err
	}
	started := time.Now()

	s.logger.Info("processing search request",
		zap.String("session", sessionID),
		zap.String("query", req.Query))

	// Empty queries skip retrieval and interpretation entirely and list
	// the catalog through the plain filter path.
	if strings.TrimSpace(req.Query) == "" {
		results := FilterCatalog(s.catalog.Listings(), &model.SearchCriteria{}, s.searchCfg.PlainResultCap)
		return s.complete(sessionID, results, s.searchCfg.EmptyQueryConfidence, started)
	}

	s.setStage(sessionID, stageRetrieval)
	retrieved := s.retrieveStage(sessionID, req.Query)
	s.attachRetrieved(sessionID, retrieved)

	s.setStage(sessionID, stageInterpretation)
	criteria, confidence := s.interpretStage(req.Query, retrieved)

	s.setStage(sessionID, stageRanking)
	results, rankFailed := s.rankStage(sessionID, criteria, retrieved)
	if rankFailed {
		return s.complete(sessionID, nil, 0, time.Now())
	}

	resp, err := s.complete(sessionID, results, confidence, started)
	if err != nil || resp == nil {
		return resp, err
	}

	// Fire-and-forget: remember queries that produced results.
	go s.storeSuccessfulQuery(req.Query, len(results))

	return resp, nil
}

// retrieveStage asks the retriever for semantic context, bounded by the
// retrieval timeout. Failure or timeout degrades to empty context; a late
// reply after timeout is dropped.
func (s *SearchService) retrieveStage(sessionID, query string) *RetrievalContext {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Retrieval)
	defer cancel()

	type retrievalReply struct {
		listings []model.ScoredListing
		queries  []string
		err      error
	}
	replyCh := make(chan retrievalReply, 1)

	go func() {
		listings, err := s.retriever.NearestListings(ctx, query, s.searchCfg.RetrievalLimit)
		if err != nil {
			replyCh <- retrievalReply{err: err}
			return
		}

		// Similar past queries are a nice-to-have; their failure does not
		// void the listing results.
		queries, err := s.retriever.NearestPastQueries(ctx, query, s.searchCfg.PastQueryLimit, s.searchCfg.PastQueryMinScore)
		if err != nil {
			s.logger.Warn("past-query lookup failed", zap.String("session", sessionID), zap.Error(err))
			queries = nil
		}
		replyCh <- retrievalReply{listings: listings, queries: queries}
	}()

	select {
	case reply := <-replyCh:
		if reply.err != nil {
			s.logger.Error("retrieval stage degraded to empty context",
				zap.String("session", sessionID),
				zap.Error(&RetrievalError{Err: reply.err}))
			return &RetrievalContext{}
		}
		s.logger.Debug("retrieval stage complete",
			zap.String("session", sessionID),
			zap.Int("listings", len(reply.listings)),
			zap.Int("similarQueries", len(reply.queries)))
		return &RetrievalContext{Listings: reply.listings, SimilarQueries: reply.queries}
	case <-ctx.Done():
		s.logger.Error("retrieval stage degraded to empty context",
			zap.String("session", sessionID),
			zap.Error(&RetrievalError{Err: ctx.Err()}))
		return &RetrievalContext{}
	}
}

// interpretStage turns the query into criteria. The interpreter never fails
// outward; a timeout surfaces to it as a collaborator error and lands on the
// same fallback path.
func (s *SearchService) interpretStage(query string, retrieved *RetrievalContext) (*model.SearchCriteria, float64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Interpretation)
	defer cancel()

	return s.interpreter.Interpret(ctx, query, retrieved)
}

// rankStage produces the final ordering: the hybrid path when semantic
// context exists, the plain catalog filter otherwise. Any panic or timeout
// during scoring is absorbed and reported as a failed ranking.
func (s *SearchService) rankStage(sessionID string, criteria *model.SearchCriteria, retrieved *RetrievalContext) ([]model.Listing, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Ranking)
	defer cancel()

	type rankReply struct {
		results []model.Listing
		err     error
	}
	replyCh := make(chan rankReply, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				replyCh <- rankReply{err: fmt.Errorf("%v", rec)}
			}
		}()

		if len(retrieved.Listings) > 0 {
			scores := make(map[string]float64, len(retrieved.Listings))
			for _, c := range retrieved.Listings {
				scores[c.Listing.ID] = c.Score
			}
			criteria.SemanticScores = scores
			replyCh <- rankReply{results: s.ranker.Rank(criteria, retrieved.Listings, s.catalog.Listings())}
			return
		}

		replyCh <- rankReply{results: FilterCatalog(s.catalog.Listings(), criteria, s.searchCfg.PlainResultCap)}
	}()

	select {
	case reply := <-replyCh:
		if reply.err != nil {
			s.logger.Error("ranking stage failed",
				zap.String("session", sessionID),
				zap.Error(&RankingError{Err: reply.err}))
			return nil, true
		}
		return reply.results, false
	case <-ctx.Done():
		s.logger.Error("ranking stage failed",
			zap.String("session", sessionID),
			zap.Error(&RankingError{Err: ctx.Err()}))
		return nil, true
	}
}

// complete removes the session and assembles the response. A completion for
// an unknown session is a stale or duplicate reply: it is logged and
// dropped, and no response is emitted.
func (s *SearchService) complete(sessionID string, results []model.Listing, confidence float64, started time.Time) (*model.SearchResponse, error) {
	state, ok := s.removeSession(sessionID)
	if !ok {
		s.logger.Warn("dropping reply for unknown session", zap.String("session", sessionID))
		return nil, nil
	}

	if results == nil {
		results = []model.Listing{}
	}
	elapsed := time.Since(started).Milliseconds()

	s.logger.Info("search completed",
		zap.String("session", sessionID),
		zap.String("query", state.request.Query),
		zap.String("stage", state.stage.String()),
		zap.Int("results", len(results)),
		zap.Int64("elapsedMs", elapsed),
		zap.Float64("confidence", confidence))

	return &model.SearchResponse{
		Results:   results,
		SessionID: sessionID,
		Metadata: model.SearchMetadata{
			TotalResults: len(results),
			SearchTimeMs: elapsed,
			Confidence:   confidence,
		},
	}, nil
}

func (s *SearchService) storeSuccessfulQuery(query string, resultCount int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Retrieval)
	defer cancel()

	if err := s.retriever.StoreQuery(ctx, query, resultCount); err != nil {
		s.logger.Warn("failed to store successful query", zap.String("query", query), zap.Error(err))
	}
}

// Session table. Insert on receipt, remove on completion; no partial
// updates are visible across sessions.

func (s *SearchService) beginSession(sessionID string, req *model.SearchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists {
		return fmt.Errorf("%w: %s", ErrSessionActive, sessionID)
	}
	s.sessions[sessionID] = &sessionState{
		request: req,
		stage:   stageReceived,
		started: time.Now(),
	}
	return nil
}

func (s *SearchService) setStage(sessionID string, stage sessionStage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.stage = stage
	}
}

func (s *SearchService) attachRetrieved(sessionID string, retrieved *RetrievalContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.retrieved = retrieved
	}
}

func (s *SearchService) removeSession(sessionID string) (*sessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	return state, ok
}

// ActiveSessions returns the number of in-flight sessions.
func (s *SearchService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// GetListing returns a single listing from the catalog.
func (s *SearchService) GetListing(id string) (model.Listing, bool) {
	return s.catalog.Get(id)
}
