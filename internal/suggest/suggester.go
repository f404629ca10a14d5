// Package suggest picks spending categories for a message by asking a
// language model to choose from the user's own tag list, then resolving
// the answer back onto known tags. A failed or unavailable model never
// stops the flow: every failure mode comes back as a plain Result.
package suggest

import (
	"context"
	"strings"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// Undetermined is the sentinel the model returns when no tag fits.
const Undetermined = "Неопределено"

// baseConfidence is reported whenever the model picked at least one
// known tag. The model gives no usable calibration, so the value is a
// constant rather than a measurement.
const baseConfidence = 0.8

// maxSuggestedTags caps how many resolved tags a Result carries.
const maxSuggestedTags = 5

// Completer produces a completion for a prompt. Implemented by the
// gemini client; tests substitute a canned function.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of a suggestion attempt. Tags are ordered
// best-first and are always drawn from the candidate list, never
// invented. Success with empty Tags means the model answered that no
// category fits.
type Result struct {
	Success     bool
	Tags        []appmodels.Tag
	Confidence  float64
	RawResponse string
	Err         string
}

// Suggester asks a Completer to categorize messages.
type Suggester struct {
	completer Completer
}

// New creates a Suggester. A nil completer is allowed; Suggest then
// reports a failed Result and the caller falls back to defaults.
func New(completer Completer) *Suggester {
	return &Suggester{completer: completer}
}

// Suggest categorizes a message against the candidate tags. Only leaf
// tags (subcategories) are offered to the model.
func (s *Suggester) Suggest(ctx context.Context, message string, candidates []appmodels.Tag) Result {
	if s == nil || s.completer == nil {
		return Result{Err: "suggestion backend is not configured"}
	}

	leaves := leafTags(candidates)
	if len(leaves) == 0 {
		return Result{Err: "no leaf tags to choose from"}
	}

	prompt := buildPrompt(message, leaves)

	response, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Log.Warn().Err(err).
			Str("message", logger.SanitizeText(message)).
			Msg("Tag suggestion request failed")
		return Result{Err: err.Error()}
	}

	return resolveResponse(response, leaves)
}

// leafTags filters the candidates down to subcategories.
func leafTags(tags []appmodels.Tag) []appmodels.Tag {
	leaves := make([]appmodels.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.IsLeaf() {
			leaves = append(leaves, tag)
		}
	}
	return leaves
}

// resolveResponse maps the model's free-text answer onto known tags.
// Unresolvable names are dropped; duplicates keep their first position.
func resolveResponse(response string, leaves []appmodels.Tag) Result {
	clean := strings.TrimSpace(response)
	if clean == "" || strings.Contains(strings.ToLower(clean), strings.ToLower(Undetermined)) {
		return Result{Success: true, RawResponse: response}
	}

	var tags []appmodels.Tag
	seen := make(map[string]struct{})

	for part := range strings.SplitSeq(clean, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		matched := MatchTag(name, leaves)
		if matched == nil {
			continue
		}
		if _, dup := seen[matched.ID]; dup {
			continue
		}
		seen[matched.ID] = struct{}{}
		tags = append(tags, *matched)
		if len(tags) == maxSuggestedTags {
			break
		}
	}

	confidence := 0.0
	if len(tags) > 0 {
		confidence = baseConfidence
	}

	return Result{
		Success:     true,
		Tags:        tags,
		Confidence:  confidence,
		RawResponse: response,
	}
}
