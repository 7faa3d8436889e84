package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List() []models.Request {
	args := m.Called()
	return args.Get(0).([]models.Request)
}

func (m *mockRepo) AddComment(ctx context.Context, index int, author, text string) error {
	args := m.Called(ctx, index, author, text)
	return args.Error(0)
}

var today = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func sample() []models.Request {
	return []models.Request{
		{Type: models.TypePurchase, OrderRef: "PO-1", Status: models.StatusPending, ETADate: "2025-05-01", PartnerName: "Acme", Description: []string{"widget"}},
		{Type: models.TypeSales, OrderRef: "SO-2", Status: models.StatusReady, ETADate: "2025-04-01", PartnerName: "Beta", Description: []string{"gadget"}},
		{Type: models.TypePurchase, OrderRef: "PO-3", Status: models.StatusOrdered, ETADate: "2025-07-01", PartnerName: "Acme", Description: []string{"bolt"}},
	}
}

func TestExecuteToolSearch(t *testing.T) {
	repo := new(mockRepo)
	repo.On("List").Return(sample())

	out, err := ExecuteTool(context.Background(), repo, "search_requests", map[string]interface{}{"query": "acme"}, today)
	require.NoError(t, err)

	assert.Equal(t, 2, out["matches"])
	listed := out["requests"].([]listedRequest)
	require.Len(t, listed, 2)
	assert.Equal(t, 0, listed[0].Index)
	assert.True(t, listed[0].Overdue)
	assert.Equal(t, 2, listed[1].Index)
	assert.False(t, listed[1].Overdue)
	repo.AssertExpectations(t)
}

func TestExecuteToolSummary(t *testing.T) {
	repo := new(mockRepo)
	repo.On("List").Return(sample())

	out, err := ExecuteTool(context.Background(), repo, "get_summary", nil, today)
	require.NoError(t, err)
	assert.Equal(t, 3, out["total"])
	assert.Equal(t, 1, out["overdue"])
	assert.Equal(t, []int{0}, out["overdue_indices"])
}

func TestExecuteToolAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("adds", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("AddComment", ctx, 2, AssistantAuthor, "call supplier").Return(nil)

		out, err := ExecuteTool(ctx, repo, "add_comment", map[string]interface{}{"index": float64(2), "text": "call supplier"}, today)
		require.NoError(t, err)
		assert.Equal(t, "added", out["status"])
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("AddComment", ctx, 9, AssistantAuthor, "x").Return(errors.New("not found"))

		_, err := ExecuteTool(ctx, repo, "add_comment", map[string]interface{}{"index": float64(9), "text": "x"}, today)
		assert.Error(t, err)
	})

	t.Run("bad index", func(t *testing.T) {
		repo := new(mockRepo)
		_, err := ExecuteTool(ctx, repo, "add_comment", map[string]interface{}{"index": 1.5, "text": "x"}, today)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExecuteToolUnknown(t *testing.T) {
	_, err := ExecuteTool(context.Background(), new(mockRepo), "drop_tables", nil, today)
	assert.Error(t, err)
}

func TestResponseParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("Two are "),
				genai.FunctionCall{Name: "get_summary"},
				genai.Text("overdue."),
			}},
		}},
	}
	calls := functionCalls(resp)
	require.Len(t, calls, 1)
	assert.Equal(t, "get_summary", calls[0].Name)
	assert.Equal(t, "Two are overdue.", replyText(resp))

	assert.Empty(t, functionCalls(&genai.GenerateContentResponse{}))
	assert.Equal(t, "I completed the action.", replyText(nil))
}

func TestAskWithoutKey(t *testing.T) {
	a := &Assistant{Repo: new(mockRepo)}
	_, err := a.Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
