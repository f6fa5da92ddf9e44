// Package rewrite implements the agent unit that rewrites one profile
// section based on an existing analysis. Rewrites must not invent employers,
// titles, or other named facts; a lightweight entity comparison between
// input and output enforces that before the result is returned.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/careerninja/learntube/agent/contract"
	promptx "github.com/careerninja/learntube/agent/prompt"
	schemax "github.com/careerninja/learntube/agent/schema"
)

type Config struct {
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"600"`
	Temperature float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
}

type Agent struct {
	generator contractx.Generator
	template  string
	cfg       Config
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(generator contractx.Generator, template string, cfg Config) *Agent {
	return &Agent{generator: generator, template: template, cfg: cfg}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentRewrite
}

func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, input contractx.TurnInput) (contractx.Delta, error) {
	if snap.Profile == nil {
		return contractx.Delta{}, fmt.Errorf("%w: rewrite requires a scraped profile", contractx.ErrPrerequisiteMissing)
	}
	if snap.Analysis == nil {
		return contractx.Delta{}, fmt.Errorf("%w: rewrite requires a profile analysis first", contractx.ErrPrerequisiteMissing)
	}

	section := resolveSection(input.Section, snap.Analysis)
	original := sectionText(snap.Profile, section)

	profileJSON, err := json.Marshal(snap.Profile)
	if err != nil {
		return contractx.Delta{}, fmt.Errorf("marshal profile: %w", err)
	}

	prompt := promptx.Fill(a.template, map[string]string{
		"SECTION":       section,
		"ORIGINAL_TEXT": original,
		"PROFILE_JSON":  string(profileJSON),
		"ANALYSIS_GAPS": strings.Join(snap.Analysis.Gaps, "\n"),
	})

	corpus := profileCorpus(snap.Profile)

	// One regeneration attempt when the first draft invents entities.
	var rewritten string
	for attempt := 1; attempt <= 2; attempt++ {
		text, genErr := a.generator.Generate(ctx, prompt, contractx.GenerateOptions{
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: a.cfg.Temperature,
		})
		if genErr != nil {
			return contractx.Delta{}, fmt.Errorf("%w: %v", contractx.ErrGenerationFailed, genErr)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return contractx.Delta{}, fmt.Errorf("%w: empty rewrite", contractx.ErrGenerationFailed)
		}

		novel := NewEntities(text, corpus)
		if len(novel) == 0 {
			rewritten = text
			break
		}
		log.Debug().Strs("entities", novel).Int("attempt", attempt).Msg("rewrite introduced unknown entities")
		if attempt == 2 {
			return contractx.Delta{}, fmt.Errorf("%w: rewrite names %s not present in the profile",
				contractx.ErrRewriteInconsistent, strings.Join(novel, ", "))
		}
	}

	result := &contractx.RewriteResult{
		ID:            uuid.NewString(),
		ProfileID:     snap.Profile.ID,
		AnalysisID:    snap.Analysis.ID,
		Section:       section,
		OriginalText:  original,
		RewrittenText: rewritten,
		CreatedAt:     snap.Now.UTC(),
	}
	if err := schemax.ValidateRewrite(result, snap.Profile.ID, snap.Analysis.ID); err != nil {
		return contractx.Delta{}, err
	}

	return contractx.Delta{
		Rewrite:  result,
		Response: fmt.Sprintf("Here is a rewritten %s:\n\n%s", section, rewritten),
		Payload:  result,
	}, nil
}

// resolveSection picks an explicit target section, falling back to the
// weakest-scoring section from the analysis.
func resolveSection(requested string, analysis *contractx.AnalysisResult) string {
	section := strings.ToLower(strings.TrimSpace(requested))
	switch section {
	case "headline", "about", "experience":
		return section
	}

	weakest := "about"
	lowest := 11
	for _, candidate := range []string{"headline", "about", "experience"} {
		if score, ok := analysis.SectionScores[candidate]; ok && score < lowest {
			lowest = score
			weakest = candidate
		}
	}
	return weakest
}

func sectionText(p *contractx.Profile, section string) string {
	switch section {
	case "headline":
		return p.Headline
	case "about":
		return p.About
	case "experience":
		var lines []string
		for _, exp := range p.Experience {
			line := exp.Title
			if exp.Company != "" {
				line += " at " + exp.Company
			}
			if exp.DateRange != "" {
				line += " (" + exp.DateRange + ")"
			}
			if exp.Summary != "" {
				line += ": " + exp.Summary
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

// profileCorpus is the text every output entity must already appear in.
func profileCorpus(p *contractx.Profile) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString("\n")
	b.WriteString(p.Headline)
	b.WriteString("\n")
	b.WriteString(p.About)
	b.WriteString("\n")
	for _, exp := range p.Experience {
		b.WriteString(exp.Title)
		b.WriteString("\n")
		b.WriteString(exp.Company)
		b.WriteString("\n")
		b.WriteString(exp.Summary)
		b.WriteString("\n")
	}
	for _, edu := range p.Education {
		b.WriteString(edu.School)
		b.WriteString("\n")
		b.WriteString(edu.Degree)
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(p.Skills, "\n"))
	return b.String()
}
