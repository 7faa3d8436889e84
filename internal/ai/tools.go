package ai

import (
	"context"
	"time"

	"depot-helpdesk/internal/filter"
	"depot-helpdesk/internal/models"
	"depot-helpdesk/internal/reports"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
)

// AssistantAuthor signs comments the assistant writes.
const AssistantAuthor = "Assistant"

// maxListed caps search_requests results sent back to the model.
const maxListed = 50

// Repository is the part of the request repository the assistant may use.
type Repository interface {
	List() []models.Request
	AddComment(ctx context.Context, index int, author, text string) error
}

var toolDeclarations = []*genai.FunctionDeclaration{
	{
		Name:        "search_requests",
		Description: "Find purchase requests and sales orders. Every argument is optional. Results are sorted by ETA date, earliest first, and include the index needed by add_comment.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query":  {Type: genai.TypeString, Description: "Free text matched against every field, e.g. a supplier or item name"},
				"status": {Type: genai.TypeString, Description: "PENDING, ORDERED, CONFIRMED, READY, CANCELLED, IN TRANSIT or INCOMPLETE"},
				"type":   {Type: genai.TypeString, Description: "Purchase or Sales"},
			},
		},
	},
	{
		Name:        "get_summary",
		Description: "Count requests by status and type and list the overdue ones.",
	},
	{
		Name:        "add_comment",
		Description: "Add a comment to the thread of one request.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"index": {Type: genai.TypeInteger, Description: "Index of the request as returned by search_requests"},
				"text":  {Type: genai.TypeString, Description: "Comment text"},
			},
			Required: []string{"index", "text"},
		},
	},
}

// listedRequest is the compact form of a request given to the model.
type listedRequest struct {
	Index       int      `json:"index"`
	Type        string   `json:"type"`
	Order       string   `json:"order"`
	Status      string   `json:"status"`
	ETA         string   `json:"eta"`
	Partner     string   `json:"partner"`
	Encargado   string   `json:"encargado"`
	Description []string `json:"description"`
	Overdue     bool     `json:"overdue"`
}

// ExecuteTool runs one tool call against repo and returns the response
// payload for the model.
func ExecuteTool(ctx context.Context, repo Repository, name string, args map[string]interface{}, today time.Time) (map[string]interface{}, error) {
	switch name {
	case "search_requests":
		entries := filter.FilterAndSort(repo.List(), filter.Criteria{
			Search: stringArg(args, "query"),
			Status: stringArg(args, "status"),
			Type:   stringArg(args, "type"),
		})
		listed := make([]listedRequest, 0, min(len(entries), maxListed))
		for _, e := range entries {
			if len(listed) == maxListed {
				break
			}
			r := e.Request
			listed = append(listed, listedRequest{
				Index:       e.Index,
				Type:        string(r.Type),
				Order:       r.OrderRef,
				Status:      r.Status,
				ETA:         r.ETADate,
				Partner:     r.PartnerName,
				Encargado:   r.Encargado,
				Description: r.Description,
				Overdue:     filter.IsOverdue(r, today),
			})
		}
		return map[string]interface{}{"matches": len(entries), "requests": listed}, nil

	case "get_summary":
		s := reports.Summarize(repo.List(), today)
		return map[string]interface{}{
			"total":           s.Total,
			"by_status":       s.ByStatus,
			"by_type":         s.ByType,
			"overdue":         s.Overdue,
			"overdue_indices": s.OverdueIndices,
		}, nil

	case "add_comment":
		index, ok := intArg(args, "index")
		if !ok {
			return nil, errors.New("add_comment needs a numeric index")
		}
		text := stringArg(args, "text")
		if text == "" {
			return nil, errors.New("add_comment needs text")
		}
		if err := repo.AddComment(ctx, index, AssistantAuthor, text); err != nil {
			return nil, errors.Wrap(err, "add_comment")
		}
		return map[string]interface{}{"status": "added", "index": index}, nil
	}
	return nil, errors.Errorf("unknown tool %q", name)
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg accepts the float64 the model's JSON decodes to, and plain ints.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}
