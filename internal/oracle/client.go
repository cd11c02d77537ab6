package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client implements Responder against any OpenAI-compatible chat completion
// endpoint. Classification and answering are separate completions; which
// handler runs for a classification is a data lookup, so adding an intent
// means adding a table entry.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

type handlerFunc func(c *Client, ctx context.Context, utterance string) (Result, error)

var handlers = map[Intent]handlerFunc{
	IntentGreeting:    handleCanned(greetingReply),
	IntentVisitorInfo: handleCanned(visitorReply),
	IntentFAQ:         (*Client).handleFAQ,
	IntentComplaint:   handleDefer,
	IntentUnrelated:   handleDefer,
	IntentChitchat:    handleFallback,
	IntentUnknown:     handleFallback,
}

func (c *Client) Respond(ctx context.Context, utterance string) (Result, error) {
	intent, err := c.classify(ctx, utterance)
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	c.logger.Debug("intent classified", "intent", string(intent))

	handle, ok := handlers[intent]
	if !ok {
		handle = handlers[IntentUnknown]
		intent = IntentUnknown
	}
	res, err := handle(c, ctx, utterance)
	if err != nil {
		return Result{}, err
	}
	res.Intent = intent
	return res, nil
}

func (c *Client) classify(ctx context.Context, utterance string) (Intent, error) {
	raw, err := c.complete(ctx, classifySystemPrompt, fmt.Sprintf(classifyUserPrompt, utterance))
	if err != nil {
		return "", err
	}

	// Models occasionally echo "Intent: faq" despite the prompt.
	label := strings.TrimSpace(raw)
	if i := strings.LastIndex(label, ":"); i >= 0 {
		label = strings.TrimSpace(label[i+1:])
	}
	label = strings.ToLower(strings.Trim(label, `."'`))

	intent := Intent(label)
	if _, ok := handlers[intent]; !ok {
		c.logger.Warn("unrecognized intent label", "label", label)
		return IntentUnknown, nil
	}
	return intent, nil
}

// handleCanned returns a handler that replies with fixed wording, enriched
// with a knowledge-base answer when one is available.
func handleCanned(base string) handlerFunc {
	return func(c *Client, ctx context.Context, utterance string) (Result, error) {
		answer, err := c.complete(ctx, answerSystemPrompt, utterance)
		if err != nil || strings.Contains(answer, needOperator) {
			// Enrichment is best-effort; the canned reply stands on its own.
			return Result{Reply: base}, nil
		}
		return Result{Reply: base + "\n" + strings.TrimSpace(answer)}, nil
	}
}

func (c *Client) handleFAQ(ctx context.Context, utterance string) (Result, error) {
	answer, err := c.complete(ctx, answerSystemPrompt, utterance)
	if err != nil {
		return Result{}, fmt.Errorf("answer: %w", err)
	}
	if strings.Contains(answer, needOperator) {
		return Result{Defer: true}, nil
	}
	return Result{Reply: strings.TrimSpace(answer)}, nil
}

func handleDefer(*Client, context.Context, string) (Result, error) {
	return Result{Defer: true}, nil
}

func handleFallback(*Client, context.Context, string) (Result, error) {
	return Result{Reply: fallbackReply}, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}
