package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumlabs/docscope/internal/chat"
	"github.com/fulcrumlabs/docscope/internal/index"
	"github.com/fulcrumlabs/docscope/internal/llm"
	"github.com/fulcrumlabs/docscope/internal/namespace"
	"github.com/fulcrumlabs/docscope/internal/retrieval"
)

// stubGenerator records the last prompt and returns a canned reply.
type stubGenerator struct {
	lastSystem string
	lastPrompt string
	reply      string
	err        error
}

func (g *stubGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.lastSystem = system
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

var _ llm.Generator = (*stubGenerator)(nil)

// queryStore returns canned scored chunks for every query.
type queryStore struct {
	results []index.ScoredChunk
	err     error
}

func (s *queryStore) AddChunks(context.Context, string, []index.Chunk) ([]string, error) {
	return nil, nil
}

func (s *queryStore) Query(context.Context, string, string, int, int) ([]index.ScoredChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *queryStore) CollectionExists(context.Context, string) (bool, error) { return true, nil }
func (s *queryStore) Close() error                                          { return nil }

var _ index.Store = (*queryStore)(nil)

func chunk(text, source, groupID string) index.ScoredChunk {
	return index.ScoredChunk{
		Chunk: index.Chunk{
			ID:       groupID + "_0",
			Text:     text,
			Metadata: map[string]string{"source": source, "group_id": groupID},
		},
		Score: 0.9,
	}
}

func TestAnswerAssemblesPrompt(t *testing.T) {
	store := &queryStore{results: []index.ScoredChunk{
		chunk("The launch is scheduled for March.", "plan.pdf", "g1"),
		chunk("Budget was approved in January.", "budget.pdf", "g2"),
	}}
	gen := &stubGenerator{reply: "The launch is in March (plan.pdf)."}
	o := chat.New(retrieval.New(store, nil), gen, nil)

	history := []chat.Turn{
		{Role: chat.RoleUser, Content: "What documents do we have?"},
		{Role: chat.RoleAssistant, Content: "A launch plan and a budget."},
	}
	answer, err := o.Answer(context.Background(), namespace.Company("acme"), "When is the launch?", history)
	require.NoError(t, err)
	assert.Equal(t, "The launch is in March (plan.pdf).", answer, "reply is returned verbatim")

	assert.Contains(t, gen.lastSystem, chat.NotFoundAnswer, "system instructions carry the not-found contract")
	assert.Contains(t, gen.lastPrompt, "The launch is scheduled for March.")
	assert.Contains(t, gen.lastPrompt, "[source: plan.pdf | document: g1]")
	assert.Contains(t, gen.lastPrompt, "[source: budget.pdf | document: g2]")
	assert.Contains(t, gen.lastPrompt, "user: What documents do we have?")
	assert.Contains(t, gen.lastPrompt, "assistant: A launch plan and a budget.")
	assert.Contains(t, gen.lastPrompt, "When is the launch?")
}

func TestAnswerEmptyContext(t *testing.T) {
	gen := &stubGenerator{reply: chat.NotFoundAnswer}
	o := chat.New(retrieval.New(&queryStore{}, nil), gen, nil)

	answer, err := o.Answer(context.Background(), namespace.Company("acme"), "Anything?", nil)
	require.NoError(t, err)
	assert.Equal(t, chat.NotFoundAnswer, answer)
	assert.Contains(t, gen.lastPrompt, "(no documents matched)")
}

func TestAnswerRetrievalError(t *testing.T) {
	store := &queryStore{err: index.ErrEmbeddingUnavailable}
	gen := &stubGenerator{reply: "should not be called"}
	o := chat.New(retrieval.New(store, nil), gen, nil)

	_, err := o.Answer(context.Background(), namespace.Company("acme"), "q", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, index.ErrEmbeddingUnavailable)
	assert.Empty(t, gen.lastPrompt, "generation must not run when retrieval fails")
}

func TestAnswerGenerationError(t *testing.T) {
	gen := &stubGenerator{err: llm.ErrGenerationUnavailable}
	o := chat.New(retrieval.New(&queryStore{}, nil), gen, nil)

	_, err := o.Answer(context.Background(), namespace.Company("acme"), "q", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrGenerationUnavailable)
}

func TestAnswerInvalidNamespace(t *testing.T) {
	o := chat.New(retrieval.New(&queryStore{}, nil), &stubGenerator{}, nil)

	_, err := o.Answer(context.Background(), namespace.Team("team", ""), "q", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, namespace.ErrMissingIdentifier)
}

func TestExtractTitle(t *testing.T) {
	gen := &stubGenerator{reply: "  Quarterly Launch Plan \n"}
	o := chat.New(retrieval.New(&queryStore{}, nil), gen, nil)

	title, err := o.ExtractTitle(context.Background(), "Quarterly Launch Plan\n\nThis document describes...")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Launch Plan", title)
	assert.Contains(t, gen.lastPrompt, "Output ONLY the name")
}

func TestExtractTitleTruncatesLongText(t *testing.T) {
	gen := &stubGenerator{reply: "Big Doc"}
	o := chat.New(retrieval.New(&queryStore{}, nil), gen, nil)

	long := make([]rune, 50000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := o.ExtractTitle(context.Background(), string(long))
	require.NoError(t, err)
	assert.Less(t, len(gen.lastPrompt), 10000, "prompt is bounded regardless of document size")
}
