package assistant

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/tbxark/lifeprompt/life"
)

const (
	runGameToolName        = "run_game"
	runGameToolDescription = "Get information about the generations and scores for Conways game of life"
)

type Result = life.Result

type runGameInput struct {
	Word string `json:"word" jsonschema:"required,description=The search query for the data which must include the query or word to call the function with"`
}

func newRunGameTool(scorer GameScorer) (tool.InvokableTool, error) {
	return utils.InferTool(
		runGameToolName,
		runGameToolDescription,
		func(ctx context.Context, input *runGameInput) (*Result, error) {
			res, err := scorer.Score(ctx, input.Word)
			if err != nil {
				return nil, err
			}
			return &res, nil
		},
	)
}
