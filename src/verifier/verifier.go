// Package verifier runs one verification request end to end: extract
// audio, transcribe, pull out factual claims, gather search evidence and
// score each claim, then aggregate and persist the run.
package verifier

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/microcosm-cc/bluemonday"

	"github.com/factguard/factguard/src/api/models"
)

// SearchUnavailable is stored verbatim as a claim's evidence when retrieval
// fails; scoring proceeds without evidence.
const SearchUnavailable = "Search unavailable"

// defaultScore is the overall score of a run that produced no claims.
const defaultScore = 50

type AudioExtractor interface {
	ExtractAudio(ctx context.Context, inputPath string) (string, func(), error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type ClaimExtractor interface {
	Extract(ctx context.Context, transcript string) ([]string, error)
}

type ClaimScorer interface {
	Score(ctx context.Context, claim, snippets string) int
}

type EvidenceSource interface {
	Snippets(ctx context.Context, claim string) (string, error)
}

// EvidenceCache is optional; a nil cache means every claim hits the search
// API directly.
type EvidenceCache interface {
	Get(ctx context.Context, claim string) (string, bool)
	Set(ctx context.Context, claim, snippets string)
}

type RecordStore interface {
	CreateVerification(v *models.Verification) error
}

type Detail struct {
	Claim    string `json:"claim"`
	Score    int    `json:"score"`
	Snippets string `json:"snippets"`
}

type Result struct {
	Transcript string   `json:"transcript"`
	Claims     []string `json:"claims"`
	Score      int      `json:"score"`
	Details    []Detail `json:"details"`
}

type Service struct {
	media      AudioExtractor
	transcribe Transcriber
	extract    ClaimExtractor
	score      ClaimScorer
	evidence   EvidenceSource
	cache      EvidenceCache
	store      RecordStore
	sanitizer  *bluemonday.Policy
	maxClaims  int
}

func New(media AudioExtractor, tr Transcriber, ex ClaimExtractor, sc ClaimScorer,
	ev EvidenceSource, cache EvidenceCache, store RecordStore, maxClaims int) *Service {
	if maxClaims <= 0 {
		maxClaims = 5
	}
	return &Service{
		media:      media,
		transcribe: tr,
		extract:    ex,
		score:      sc,
		evidence:   ev,
		cache:      cache,
		store:      store,
		sanitizer:  bluemonday.StrictPolicy(),
		maxClaims:  maxClaims,
	}
}

// Verify runs the full pipeline for one uploaded file. The sequence is
// strictly sequential; nothing is written to the store until aggregation
// has finished, and a store failure after that is surfaced rather than
// silently dropped.
func (s *Service) Verify(ctx context.Context, userID uint64, inputName, filePath string) (*Result, error) {
	audioPath, cleanup, err := s.media.ExtractAudio(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaProcessing, err)
	}
	defer cleanup()

	transcript, err := s.transcribe.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if transcript == "" {
		return nil, ErrNoSpeech
	}
	transcript = s.sanitizer.Sanitize(transcript)

	claimList, err := s.extract.Extract(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimParse, err)
	}
	for i, c := range claimList {
		claimList[i] = s.sanitizer.Sanitize(c)
	}
	log.Printf("verifier: user %d: %d claims extracted", userID, len(claimList))

	toCheck := claimList
	if len(toCheck) > s.maxClaims {
		toCheck = toCheck[:s.maxClaims]
	}

	details := make([]Detail, 0, len(toCheck))
	for _, claim := range toCheck {
		snippets := s.lookupEvidence(ctx, claim)
		details = append(details, Detail{
			Claim:    claim,
			Score:    s.score.Score(ctx, claim, snippets),
			Snippets: snippets,
		})
	}

	overall := Aggregate(details)

	rec := models.Verification{
		UserID:     userID,
		InputType:  "file",
		Input:      inputName,
		Transcript: transcript,
		Claims:     claimList,
		Score:      overall,
	}
	for i, d := range details {
		rec.Details = append(rec.Details, models.VerificationClaim{
			Position: i,
			Claim:    d.Claim,
			Score:    d.Score,
			Snippets: d.Snippets,
		})
	}
	if err := s.store.CreateVerification(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	return &Result{
		Transcript: transcript,
		Claims:     claimList,
		Score:      overall,
		Details:    details,
	}, nil
}

// lookupEvidence degrades on any retrieval failure instead of aborting the
// claim: the sentinel is returned and never cached.
func (s *Service) lookupEvidence(ctx context.Context, claim string) string {
	if s.cache != nil {
		if snippets, ok := s.cache.Get(ctx, claim); ok {
			return snippets
		}
	}
	snippets, err := s.evidence.Snippets(ctx, claim)
	if err != nil {
		log.Printf("verifier: search for %q: %v", claim, err)
		return SearchUnavailable
	}
	if s.cache != nil && snippets != "" {
		s.cache.Set(ctx, claim, snippets)
	}
	return snippets
}

// Aggregate rescales the 0-10 sub-score average onto 0-100. A run with no
// scored claims gets the fixed default rather than a division by zero.
func Aggregate(details []Detail) int {
	if len(details) == 0 {
		return defaultScore
	}
	total := 0
	for _, d := range details {
		total += clamp(d.Score, 0, 10)
	}
	mean := float64(total) / float64(len(details))
	return clamp(int(math.Round(mean*10)), 0, 100)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
