package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const missingWordMessage = "Please provide a specific word or query to proceed with the request."

var (
	quotedWord = regexp.MustCompile(`["“]([^"”]+)["”]`)
	plainWord  = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// LocalResponder answers without a chat model. It scores every quoted word
// in the input, or the last word when nothing is quoted.
type LocalResponder struct {
	scorer GameScorer
}

func NewLocalResponder(scorer GameScorer) *LocalResponder {
	return &LocalResponder{scorer: scorer}
}

func (r *LocalResponder) Respond(ctx context.Context, input string) (string, error) {
	words := extractWords(input)
	if len(words) == 0 {
		return missingWordMessage, nil
	}
	return scoreWords(ctx, r.scorer, words)
}

func scoreWords(ctx context.Context, scorer GameScorer, words []string) (string, error) {
	blocks := make([]string, 0, len(words))
	for _, word := range words {
		res, err := scorer.Score(ctx, word)
		if err != nil {
			return "", fmt.Errorf("failed to score %q: %w", word, err)
		}
		blocks = append(blocks, fmt.Sprintf("The data for the word %q is as follows:\n\n- Generations: %d\n- Score: %d", word, res.Generations, res.Score))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func extractWords(input string) []string {
	var words []string
	for _, m := range quotedWord.FindAllStringSubmatch(input, -1) {
		if w := strings.TrimSpace(m[1]); w != "" {
			words = append(words, w)
		}
	}
	if len(words) > 0 {
		return words
	}
	plain := plainWord.FindAllString(input, -1)
	if len(plain) == 0 {
		return nil
	}
	return plain[len(plain)-1:]
}

type FailbackResponder struct {
	responders []Responder
}

func NewFailbackResponder(responders ...Responder) *FailbackResponder {
	return &FailbackResponder{responders: responders}
}

func (r *FailbackResponder) Respond(ctx context.Context, input string) (string, error) {
	if len(r.responders) == 0 {
		return "", errors.New("no responders configured")
	}
	var lastErr error
	for _, responder := range r.responders {
		out, err := responder.Respond(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all responders failed: %w", lastErr)
}
