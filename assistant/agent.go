package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a Responder as an eino ADK agent so it can run under adk.Runner.
type Agent struct {
	name        string
	description string
	responder   Responder
}

func NewAgent(name, description string, responder Responder) *Agent {
	return &Agent{
		name:        name,
		description: description,
		responder:   responder,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		answer, err := a.responder.Respond(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("respond failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(answer, nil),
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}

// RunnerResponder answers through an adk.Runner, returning the last message the agent emits.
type RunnerResponder struct {
	runner *adk.Runner
}

func NewRunnerResponder(ctx context.Context, agent adk.Agent) *RunnerResponder {
	return &RunnerResponder{
		runner: adk.NewRunner(ctx, adk.RunnerConfig{Agent: agent}),
	}
}

func (r *RunnerResponder) Respond(ctx context.Context, input string) (string, error) {
	iter := r.runner.Run(ctx, []adk.Message{schema.UserMessage(input)})
	var (
		answer string
		found  bool
	)
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			return "", event.Err
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			return "", fmt.Errorf("read agent message: %w", err)
		}
		answer, found = msg.Content, true
	}
	if !found {
		return "", errors.New("agent produced no answer")
	}
	return answer, nil
}
