package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// DefaultSystemPrompts are sent ahead of the user input on the first model call.
var DefaultSystemPrompts = []string{
	"Parse the prompt and use it to call the run_game function as many times as needed",
	"If you are asked to generate/decide the words, come up with N number of words that do not share similarities",
	"Format your response well, do not add any asterix.",
	"If a word or prompt is not provided by the user, return an appropriate error message.",
}

const DefaultFinalInstruction = "Respond in a way that answers the user's question using the response"

type responderOptions struct {
	systemPrompts    []string
	finalInstruction string
}

type ResponderOption func(*responderOptions)

// WithSystemPrompts replaces DefaultSystemPrompts.
func WithSystemPrompts(prompts ...string) ResponderOption {
	return func(o *responderOptions) {
		o.systemPrompts = prompts
	}
}

func WithFinalInstruction(instruction string) ResponderOption {
	return func(o *responderOptions) {
		o.finalInstruction = instruction
	}
}

// ToolBasedResponder lets the chat model call run_game for every word it
// finds in the prompt, then asks it to answer with the tool results.
type ToolBasedResponder struct {
	chatModel        model.ToolCallingChatModel
	gameTool         tool.InvokableTool
	systemPrompts    []string
	finalInstruction string
}

func NewToolBasedResponder(ctx context.Context, chatModel model.ToolCallingChatModel, scorer GameScorer, opts ...ResponderOption) (*ToolBasedResponder, error) {
	options := responderOptions{
		systemPrompts:    DefaultSystemPrompts,
		finalInstruction: DefaultFinalInstruction,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	gameTool, err := newRunGameTool(scorer)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tool: %w", runGameToolName, err)
	}
	info, err := gameTool.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tool info: %w", err)
	}
	modelWithTools, err := chatModel.WithTools([]*schema.ToolInfo{info})
	if err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	return &ToolBasedResponder{
		chatModel:        modelWithTools,
		gameTool:         gameTool,
		systemPrompts:    options.systemPrompts,
		finalInstruction: options.finalInstruction,
	}, nil
}

func (r *ToolBasedResponder) Respond(ctx context.Context, input string) (string, error) {
	messages := make([]*schema.Message, 0, len(r.systemPrompts)+3)
	for _, p := range r.systemPrompts {
		messages = append(messages, schema.SystemMessage(p))
	}
	messages = append(messages, schema.UserMessage(input))

	first, err := r.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}
	messages = append(messages, first)

	for _, tc := range first.ToolCalls {
		if tc.Function.Name != runGameToolName {
			slog.Warn("Model called an unknown tool", "tool", tc.Function.Name)
			messages = append(messages, schema.ToolMessage(fmt.Sprintf(`{"error":"unknown tool %q"}`, tc.Function.Name), tc.ID))
			continue
		}
		slog.Debug("Running tool", "tool", tc.Function.Name, "arguments", tc.Function.Arguments)
		output, tErr := r.gameTool.InvokableRun(ctx, tc.Function.Arguments)
		if tErr != nil {
			return "", fmt.Errorf("failed to run %s: %w", runGameToolName, tErr)
		}
		messages = append(messages, schema.ToolMessage(output, tc.ID))
	}

	final, err := r.chatModel.Generate(ctx, append([]*schema.Message{schema.SystemMessage(r.finalInstruction)}, messages...))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}
	// The model likes to bold numbers even when told not to.
	return strings.ReplaceAll(final.Content, "*", ""), nil
}
