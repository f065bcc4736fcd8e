package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/factguard/factguard/src/api/models"
)

type fakeMedia struct {
	err       error
	cleaned   bool
	audioPath string
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, inputPath string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if f.audioPath == "" {
		f.audioPath = "/tmp/temp_test.m4a"
	}
	return f.audioPath, func() { f.cleaned = true }, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	claims []string
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, transcript string) ([]string, error) {
	return f.claims, f.err
}

type fakeScorer struct {
	scores map[string]int
	calls  []string
}

func (f *fakeScorer) Score(ctx context.Context, claim, snippets string) int {
	f.calls = append(f.calls, claim)
	if s, ok := f.scores[claim]; ok {
		return s
	}
	return 5
}

type fakeSearch struct {
	snippets map[string]string
	failFor  map[string]bool
	calls    int
}

func (f *fakeSearch) Snippets(ctx context.Context, claim string) (string, error) {
	f.calls++
	if f.failFor[claim] {
		return "", errors.New("search down")
	}
	return f.snippets[claim], nil
}

type fakeCache struct {
	data map[string]string
	sets map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, sets: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, claim string) (string, bool) {
	v, ok := f.data[claim]
	return v, ok
}

func (f *fakeCache) Set(ctx context.Context, claim, snippets string) {
	f.sets[claim] = snippets
}

type fakeStore struct {
	created []models.Verification
	err     error
}

func (f *fakeStore) CreateVerification(v *models.Verification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *v)
	return nil
}

func newService(media *fakeMedia, tr *fakeTranscriber, ex *fakeExtractor,
	sc *fakeScorer, ev *fakeSearch, cache EvidenceCache, st *fakeStore) *Service {
	return New(media, tr, ex, sc, ev, cache, st, 5)
}

func TestVerify_HappyPath(t *testing.T) {
	media := &fakeMedia{}
	tr := &fakeTranscriber{text: "water boils and cats fly"}
	ex := &fakeExtractor{claims: []string{"Cats can fly.", "Water boils at 100C.", "The sky is green."}}
	sc := &fakeScorer{scores: map[string]int{"Cats can fly.": 2, "Water boils at 100C.": 5, "The sky is green.": 9}}
	ev := &fakeSearch{snippets: map[string]string{"Cats can fly.": "cats cannot fly"}}
	st := &fakeStore{}

	res, err := newService(media, tr, ex, sc, ev, nil, st).Verify(context.Background(), 7, "talk.mp4", "/up/talk.mp4")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// round((2+5+9)/3 * 10) = round(53.33) = 53
	if res.Score != 53 {
		t.Errorf("score = %d, want 53", res.Score)
	}
	if len(res.Details) != 3 {
		t.Fatalf("details = %d, want 3", len(res.Details))
	}
	if res.Details[0].Claim != "Cats can fly." || res.Details[0].Score != 2 {
		t.Errorf("details out of extraction order: %+v", res.Details[0])
	}
	if !media.cleaned {
		t.Error("temp audio not cleaned up on success")
	}

	if len(st.created) != 1 {
		t.Fatalf("store writes = %d, want 1", len(st.created))
	}
	rec := st.created[0]
	if rec.UserID != 7 || rec.Score != 53 || rec.Input != "talk.mp4" || rec.InputType != "file" {
		t.Errorf("bad record: %+v", rec)
	}
	if len(rec.Details) != 3 || rec.Details[2].Position != 2 {
		t.Errorf("bad record details: %+v", rec.Details)
	}
}

func TestVerify_ClaimCapIsFive(t *testing.T) {
	var many []string
	for i := 0; i < 8; i++ {
		many = append(many, fmt.Sprintf("claim %d", i))
	}
	media := &fakeMedia{}
	sc := &fakeScorer{}
	ev := &fakeSearch{}
	st := &fakeStore{}

	res, err := newService(media, &fakeTranscriber{text: "t"}, &fakeExtractor{claims: many}, sc, ev, nil, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.calls) != 5 {
		t.Errorf("scored %d claims, want 5", len(sc.calls))
	}
	if len(res.Details) != 5 {
		t.Errorf("details = %d, want 5", len(res.Details))
	}
	// Full claim list is still reported and persisted.
	if len(res.Claims) != 8 || len(st.created[0].Claims) != 8 {
		t.Errorf("claim list truncated: resp %d, stored %d", len(res.Claims), len(st.created[0].Claims))
	}
}

func TestVerify_NoClaimsDefaultScore(t *testing.T) {
	st := &fakeStore{}
	res, err := newService(&fakeMedia{}, &fakeTranscriber{text: "chit chat"}, &fakeExtractor{claims: []string{}},
		&fakeScorer{}, &fakeSearch{}, nil, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 50 {
		t.Errorf("score = %d, want default 50", res.Score)
	}
	if len(st.created) != 1 {
		t.Error("zero-claim run should still be persisted")
	}
}

func TestVerify_SearchFailureDegrades(t *testing.T) {
	claims := []string{"a", "b", "c"}
	sc := &fakeScorer{scores: map[string]int{"a": 8, "b": 8, "c": 8}}
	ev := &fakeSearch{failFor: map[string]bool{"b": true}, snippets: map[string]string{"a": "sa", "c": "sc"}}
	st := &fakeStore{}

	res, err := newService(&fakeMedia{}, &fakeTranscriber{text: "t"}, &fakeExtractor{claims: claims}, sc, ev, nil, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if err != nil {
		t.Fatalf("search failure must not abort the run: %v", err)
	}
	if res.Details[1].Snippets != SearchUnavailable {
		t.Errorf("snippets = %q, want %q", res.Details[1].Snippets, SearchUnavailable)
	}
	if len(sc.calls) != 3 {
		t.Errorf("scored %d claims, want all 3", len(sc.calls))
	}
	if res.Details[0].Snippets != "sa" || res.Details[2].Snippets != "sc" {
		t.Error("neighboring claims lost their evidence")
	}
}

func TestVerify_BlankTranscript(t *testing.T) {
	media := &fakeMedia{}
	st := &fakeStore{}
	_, err := newService(media, &fakeTranscriber{text: ""}, &fakeExtractor{}, &fakeScorer{}, &fakeSearch{}, nil, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
	if len(st.created) != 0 {
		t.Error("no-speech run must not be persisted")
	}
	if !media.cleaned {
		t.Error("temp audio not cleaned up on no-speech path")
	}
}

func TestVerify_FatalStages(t *testing.T) {
	ctx := context.Background()

	media := &fakeMedia{err: errors.New("ffmpeg exploded")}
	_, err := newService(media, &fakeTranscriber{}, &fakeExtractor{}, &fakeScorer{}, &fakeSearch{}, nil, &fakeStore{}).
		Verify(ctx, 1, "f.mp4", "/up/f.mp4")
	if !errors.Is(err, ErrMediaProcessing) {
		t.Errorf("media stage: err = %v", err)
	}

	m2 := &fakeMedia{}
	_, err = newService(m2, &fakeTranscriber{err: errors.New("401")}, &fakeExtractor{}, &fakeScorer{}, &fakeSearch{}, nil, &fakeStore{}).
		Verify(ctx, 1, "f.mp4", "/up/f.mp4")
	if !errors.Is(err, ErrTranscription) {
		t.Errorf("transcription stage: err = %v", err)
	}
	if !m2.cleaned {
		t.Error("temp audio not cleaned up on transcription failure")
	}

	_, err = newService(&fakeMedia{}, &fakeTranscriber{text: "t"}, &fakeExtractor{err: errors.New("garbled")}, &fakeScorer{}, &fakeSearch{}, nil, &fakeStore{}).
		Verify(ctx, 1, "f.mp4", "/up/f.mp4")
	if !errors.Is(err, ErrClaimParse) {
		t.Errorf("extraction stage: err = %v", err)
	}

	_, err = newService(&fakeMedia{}, &fakeTranscriber{text: "t"}, &fakeExtractor{claims: []string{"a"}}, &fakeScorer{}, &fakeSearch{}, nil, &fakeStore{err: errors.New("db gone")}).
		Verify(ctx, 1, "f.mp4", "/up/f.mp4")
	if !errors.Is(err, ErrPersist) {
		t.Errorf("persist stage: err = %v", err)
	}
}

func TestVerify_EvidenceCache(t *testing.T) {
	cache := newFakeCache()
	cache.data["hit"] = "cached snippets"
	ev := &fakeSearch{snippets: map[string]string{"miss": "fresh snippets"}, failFor: map[string]bool{"down": true}}
	st := &fakeStore{}

	res, err := newService(&fakeMedia{}, &fakeTranscriber{text: "t"},
		&fakeExtractor{claims: []string{"hit", "miss", "down"}}, &fakeScorer{}, ev, cache, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Details[0].Snippets != "cached snippets" {
		t.Error("cache hit not used")
	}
	if ev.calls != 2 {
		t.Errorf("search calls = %d, want 2 (hit served from cache)", ev.calls)
	}
	if cache.sets["miss"] != "fresh snippets" {
		t.Error("fresh snippets not cached")
	}
	if _, ok := cache.sets["down"]; ok {
		t.Error("sentinel must never be cached")
	}
}

func TestVerify_SanitizesLLMOutput(t *testing.T) {
	tr := &fakeTranscriber{text: `hello <script>alert(1)</script> world`}
	ex := &fakeExtractor{claims: []string{`<b>bold claim</b>`}}
	st := &fakeStore{}

	res, err := newService(&fakeMedia{}, tr, ex, &fakeScorer{}, &fakeSearch{}, nil, st).
		Verify(context.Background(), 1, "f.mp4", "/up/f.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.Transcript, "<script>") {
		t.Errorf("transcript not sanitized: %q", res.Transcript)
	}
	if strings.Contains(res.Claims[0], "<b>") {
		t.Errorf("claim not sanitized: %q", res.Claims[0])
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, 50},
		{"single max", []int{10}, 100},
		{"single min", []int{0}, 0},
		{"mixed scores round", []int{2, 5, 9}, 53},
		{"all neutral", []int{5, 5, 5}, 50},
		{"rounds up", []int{1, 2}, 15},
		{"out of range clamped", []int{99, -4}, 50}, // clamped to 10 and 0 first
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var details []Detail
			for _, s := range tt.scores {
				details = append(details, Detail{Score: s})
			}
			if got := Aggregate(details); got != tt.want {
				t.Errorf("Aggregate(%v) = %d, want %d", tt.scores, got, tt.want)
			}
			if got := Aggregate(details); got < 0 || got > 100 {
				t.Errorf("Aggregate out of [0,100]: %d", got)
			}
		})
	}
}
