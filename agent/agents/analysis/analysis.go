// Package analysis implements the agent unit that critiques a Profile
// snapshot via the text-generation capability.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
	promptx "github.com/careerninja/learntube/agent/prompt"
	schemax "github.com/careerninja/learntube/agent/schema"
)

type Config struct {
	MaxAttempts int     `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"3"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"900"`
	Temperature float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
}

type Agent struct {
	generator contractx.Generator
	template  string
	cfg       Config
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(generator contractx.Generator, template string, cfg Config) *Agent {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Agent{generator: generator, template: template, cfg: cfg}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentAnalysis
}

// llmAnalysis is the JSON object the model is instructed to return.
type llmAnalysis struct {
	SectionScores   map[string]int `json:"section_scores"`
	Strengths       []string       `json:"strengths"`
	Gaps            []string       `json:"gaps"`
	Recommendations []string       `json:"recommendations"`
	Summary         string         `json:"summary"`
}

// Run analyzes the session's current profile. The generation call is retried
// up to MaxAttempts when the model returns malformed or partial output; after
// that the agent fails with ErrAnalysisFailed.
func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, _ contractx.TurnInput) (contractx.Delta, error) {
	if snap.Profile == nil {
		return contractx.Delta{}, fmt.Errorf("%w: analysis requires a scraped profile", contractx.ErrPrerequisiteMissing)
	}

	profileJSON, err := json.Marshal(snap.Profile)
	if err != nil {
		return contractx.Delta{}, fmt.Errorf("marshal profile: %w", err)
	}

	prompt := promptx.Fill(a.template, map[string]string{
		"PROFILE_JSON": string(profileJSON),
	})

	var parsed llmAnalysis
	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		text, genErr := a.generator.Generate(ctx, prompt, contractx.GenerateOptions{
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		})
		if genErr != nil {
			if ctx.Err() != nil {
				return contractx.Delta{}, genErr
			}
			lastErr = genErr
			continue
		}

		var candidate llmAnalysis
		parseErr := parseAnalysis(text, &candidate)
		if parseErr == nil {
			parsed = candidate
			lastErr = nil
			break
		}
		log.Debug().Err(parseErr).Int("attempt", attempt).Msg("analysis output unparseable, regenerating")
		lastErr = parseErr
	}
	if lastErr != nil {
		return contractx.Delta{}, fmt.Errorf("%w: %v", contractx.ErrAnalysisFailed, lastErr)
	}

	result := &contractx.AnalysisResult{
		ID:              uuid.NewString(),
		ProfileID:       snap.Profile.ID,
		SectionScores:   clampScores(parsed.SectionScores),
		Strengths:       parsed.Strengths,
		Gaps:            parsed.Gaps,
		Recommendations: parsed.Recommendations,
		Summary:         strings.TrimSpace(parsed.Summary),
		CreatedAt:       snap.Now.UTC(),
	}
	if err := schemax.ValidateAnalysis(result, snap.Profile.ID); err != nil {
		return contractx.Delta{}, err
	}

	return contractx.Delta{
		Analysis: result,
		Response: composeResponse(result),
		Payload:  result,
	}, nil
}

// parseAnalysis extracts the JSON object from the model text, tolerating
// commentary before the opening brace.
func parseAnalysis(text string, out *llmAnalysis) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return errors.New("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("decode analysis object: %w", err)
	}
	if len(out.SectionScores) == 0 {
		return errors.New("analysis object missing section_scores")
	}
	return nil
}

func clampScores(scores map[string]int) map[string]int {
	clamped := make(map[string]int, len(scores))
	for section, score := range scores {
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		clamped[section] = score
	}
	return clamped
}

func composeResponse(res *contractx.AnalysisResult) string {
	var b strings.Builder
	if res.Summary != "" {
		b.WriteString(res.Summary)
		b.WriteString("\n\n")
	}
	if len(res.Gaps) > 0 {
		b.WriteString("Main gaps: ")
		b.WriteString(strings.Join(res.Gaps, "; "))
		b.WriteString("\n")
	}
	if len(res.Recommendations) > 0 {
		b.WriteString("Top recommendations:\n")
		for _, rec := range res.Recommendations {
			b.WriteString("- ")
			b.WriteString(rec)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
