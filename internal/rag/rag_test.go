package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dream-ai/bp-assistant/internal/db"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (*pgvector.Vector, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := pgvector.NewVector([]float32{1, 0, 0})
	return &v, nil
}

type fakeSearcher struct {
	records  []*db.ScoredRecord
	err      error
	gotTable string
	gotLimit int
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, table string, _ *pgvector.Vector, limit int) ([]*db.ScoredRecord, error) {
	f.gotTable = table
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func scored(text string) *db.ScoredRecord {
	return &db.ScoredRecord{Record: db.Record{Text: text}}
}

func TestRetriever_Retrieve(t *testing.T) {
	searcher := &fakeSearcher{records: []*db.ScoredRecord{scored("E1: cuff too loose")}}
	r := NewRetriever(&fakeEmbedder{}, searcher, "bp_docs", 0)

	got, err := r.Retrieve(context.Background(), "What does error E1 mean?")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "E1: cuff too loose", got[0].Text)
	assert.Equal(t, "bp_docs", searcher.gotTable)
	assert.Equal(t, DefaultTopK, searcher.gotLimit)
}

func TestRetriever_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewRetriever(&fakeEmbedder{err: boom}, &fakeSearcher{}, "t", 3).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(&fakeEmbedder{}, &fakeSearcher{err: boom}, "t", 3).Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(nil, nil, "t", 3).Retrieve(context.Background(), "q")
	assert.Error(t, err)
}

func TestContextBuilder_BuildContext(t *testing.T) {
	cb := NewContextBuilder(0, nil)
	got := cb.BuildContext([]*db.ScoredRecord{scored("first"), nil, scored("  "), scored("second")})
	assert.Equal(t, "first\n\nsecond", got)
	assert.Empty(t, cb.BuildContext(nil))
}

func TestContextBuilder_RespectsTokenBudget(t *testing.T) {
	cb := NewContextBuilder(10, EstimateCounter{})
	long := strings.Repeat("a", 40)

	got := cb.BuildContext([]*db.ScoredRecord{scored(long), scored(long)})
	assert.Equal(t, long, got, "second chunk exceeds the budget")

	huge := strings.Repeat("b", 400)
	assert.Equal(t, huge, cb.BuildContext([]*db.ScoredRecord{scored(huge)}), "first chunk is always kept")
}

func TestContextBuilder_BuildPrompt(t *testing.T) {
	cb := NewContextBuilder(0, nil)

	prompt := cb.BuildPrompt("E1: cuff too loose", "What does error E1 mean?")
	assert.Contains(t, prompt, "E1: cuff too loose")
	assert.Contains(t, prompt, DomainInstruction)
	assert.True(t, strings.HasSuffix(prompt, "What does error E1 mean?"))
	assert.Less(t, strings.Index(prompt, "E1: cuff too loose"), strings.Index(prompt, DomainInstruction))

	empty := cb.BuildPrompt("", "hello")
	assert.Contains(t, empty, DomainInstruction)
	assert.True(t, strings.HasSuffix(empty, "hello"))
}

func TestEstimateCounter(t *testing.T) {
	assert.Equal(t, 0, EstimateCounter{}.CountTokens(""))
	assert.Equal(t, 1, EstimateCounter{}.CountTokens("abc"))
	assert.Equal(t, 2, EstimateCounter{}.CountTokens("血壓計錯誤"))
}
