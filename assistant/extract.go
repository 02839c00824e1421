package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const (
	extractWordsToolName        = "extract_words"
	extractWordsToolDescription = "List the words from the user prompt that should be run through Conway's game of life."
)

const extractWordsSystemPrompt = `You pick the words a user wants to run through Conway's game of life.
Each letter of a word becomes a row of cells, so only words matter, not sentences.
If the user asks you to come up with N words, choose N words that do not share similarities.
If no word is given or asked for, return an empty list.
Call the '%s' tool with the result.`

type extractedWords struct {
	Words []string `json:"words" jsonschema:"required,description=Words to score, in the order they appear"`
}

// ExtractingResponder forces the model to return the words as tool arguments,
// then scores and formats them locally. It needs one model call per prompt.
type ExtractingResponder struct {
	chatModel model.ToolCallingChatModel
	toolInfo  *schema.ToolInfo
	scorer    GameScorer
}

func NewExtractingResponder(chatModel model.ToolCallingChatModel, scorer GameScorer) (*ExtractingResponder, error) {
	toolInfo, err := utils.GoStruct2ToolInfo[extractedWords](extractWordsToolName, extractWordsToolDescription)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &ExtractingResponder{
		chatModel: chatModel,
		toolInfo:  toolInfo,
		scorer:    scorer,
	}, nil
}

func (r *ExtractingResponder) Respond(ctx context.Context, input string) (string, error) {
	words, err := r.extract(ctx, input)
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return missingWordMessage, nil
	}
	return scoreWords(ctx, r.scorer, words)
}

func (r *ExtractingResponder) extract(ctx context.Context, input string) ([]string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(extractWordsSystemPrompt, extractWordsToolName)),
		schema.UserMessage(input),
	}
	response, err := r.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{r.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, r.toolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}
	if len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("no ToolCall found in model response: %s", response.Content)
	}
	var result extractedWords
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &result); err != nil {
		return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}
	words := make([]string, 0, len(result.Words))
	for _, w := range result.Words {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}
