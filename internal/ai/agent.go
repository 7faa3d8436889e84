package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const modelName = "gemini-2.0-flash-001"

// maxToolRounds bounds how many times the model may call tools for a
// single question.
const maxToolRounds = 5

// ErrNoAPIKey is returned when the assistant is not configured.
var ErrNoAPIKey = errors.New("assistant API key is not configured")

// Assistant answers staff questions about the request list with Gemini.
type Assistant struct {
	APIKey string
	Repo   Repository
	Now    func() time.Time
}

// Ask sends message to the model and serves its tool calls until it
// answers in text.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if a.APIKey == "" {
		return "", ErrNoAPIKey
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	today := now()

	client, err := genai.NewClient(ctx, option.WithAPIKey(a.APIKey))
	if err != nil {
		return "", errors.Wrap(err, "create gemini client")
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt(today)))
	model.Tools = []*genai.Tool{{FunctionDeclarations: toolDeclarations}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", errors.Wrap(err, "send message")
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.Info().Str("tool", call.Name).Msg("Assistant tool call")
			result, err := ExecuteTool(ctx, a.Repo, call.Name, call.Args, today)
			if err != nil {
				log.Warn().Err(err).Str("tool", call.Name).Msg("Assistant tool failed")
				result = map[string]interface{}{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", errors.Wrap(err, "send tool results")
		}
	}
	return "", errors.Errorf("assistant did not answer within %d tool rounds", maxToolRounds)
}

func systemPrompt(today time.Time) string {
	return fmt.Sprintf(`Today is %s. You help warehouse staff track purchase requests and sales orders.

RULES:
1. Never guess about requests. Call 'search_requests' or 'get_summary' first.
2. A request is overdue when its ETA date is before today and its status is not READY or CANCELLED.
3. Refer to requests by order number and partner, and mention the index only when asked.
4. Only call 'add_comment' when the user explicitly asks to leave a note.
5. Answer briefly in the language of the question.`, today.Format(models.DateLayout))
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range parts(resp) {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, part := range parts(resp) {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "I completed the action."
	}
	return sb.String()
}

func parts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
