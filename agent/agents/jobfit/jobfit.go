// Package jobfit implements the agent unit that scores a Profile snapshot
// against a target role. The score is anchored on deterministic skill
// overlap; the generation capability contributes a bounded adjustment and
// the rationale.
package jobfit

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

const (
	baseFloor     = 5
	baseSpan      = 90
	maxAdjustment = 10
)

type Config struct {
	MaxAttempts int     `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"2"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"500"`
	Temperature float64 `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
}

type Agent struct {
	generator contractx.Generator
	template  string
	cfg       Config
}

var _ contractx.AgentUnit = (*Agent)(nil)

func New(generator contractx.Generator, template string, cfg Config) *Agent {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	return &Agent{generator: generator, template: template, cfg: cfg}
}

func (a *Agent) Name() contractx.AgentName {
	return contractx.AgentJobFit
}

type llmAdjustment struct {
	Adjustment int    `json:"adjustment"`
	Rationale  string `json:"rationale"`
}

func (a *Agent) Run(ctx context.Context, snap contractx.Snapshot, input contractx.TurnInput) (contractx.Delta, error) {
	if snap.Profile == nil {
		return contractx.Delta{}, fmt.Errorf("%w: job fit requires a scraped profile", contractx.ErrPrerequisiteMissing)
	}
	role := strings.TrimSpace(input.TargetRole)
	if role == "" {
		return contractx.Delta{}, fmt.Errorf("%w: a target role is required for job fit scoring", contractx.ErrPrerequisiteMissing)
	}

	roleDesc := SynthesizeRoleDescription(role)
	matched, missing := skillOverlap(snap.Profile.Skills, roleDesc)
	base := overlapBase(len(matched), len(matched)+len(missing))

	profileJSON, err := json.Marshal(snap.Profile)
	if err != nil {
		return contractx.Delta{}, fmt.Errorf("marshal profile: %w", err)
	}

	prompt := promptx.Fill(a.template, map[string]string{
		"PROFILE_JSON":     string(profileJSON),
		"TARGET_ROLE":      role,
		"ROLE_DESCRIPTION": roleDesc,
		"BASE_SCORE":       fmt.Sprintf("%d", base),
		"MATCHED_SKILLS":   strings.Join(matched, ", "),
		"MISSING_SKILLS":   strings.Join(missing, ", "),
	})

	score := &contractx.JobFitScore{
		ID:            uuid.NewString(),
		ProfileID:     snap.Profile.ID,
		TargetRole:    role,
		MatchedSkills: matched,
		MissingSkills: missing,
		CreatedAt:     snap.Now.UTC(),
	}

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

		var parsed llmAdjustment
		if parseErr := parseAdjustment(text, &parsed); parseErr != nil {
			log.Debug().Err(parseErr).Int("attempt", attempt).Msg("job fit output unparseable, regenerating")
			lastErr = parseErr
			continue
		}

		score.Score = clampScore(base + clampAdjustment(parsed.Adjustment))
		score.Rationale = strings.TrimSpace(parsed.Rationale)

		if err := schemax.ValidateJobFit(score, snap.Profile); err != nil {
			// The rationale policy is enforced here, not trusted from the model.
			log.Debug().Err(err).Int("attempt", attempt).Msg("job fit rationale rejected, regenerating")
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return contractx.Delta{}, fmt.Errorf("%w: %v", contractx.ErrGenerationFailed, lastErr)
	}

	return contractx.Delta{
		JobFit:   score,
		Response: fmt.Sprintf("Fit for %q: %d/100.\n%s", role, score.Score, score.Rationale),
		Payload:  score,
	}, nil
}

func parseAdjustment(text string, out *llmAdjustment) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return errors.New("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("decode adjustment object: %w", err)
	}
	if strings.TrimSpace(out.Rationale) == "" {
		return errors.New("adjustment object missing rationale")
	}
	return nil
}

// SynthesizeRoleDescription builds a short canonical role description when
// the user supplies only a title.
func SynthesizeRoleDescription(role string) string {
	title := strings.TrimSpace(role)
	if title == "" {
		return "A generic professional role; focus on transferable skills: communication, problem-solving, teamwork, and role-relevant competencies."
	}
	return fmt.Sprintf(
		"Canonical responsibilities and skills for the role %q:\n"+
			"- Core responsibilities: deliver outcomes relevant to the role, collaborate cross-functionally, and manage stakeholder communication.\n"+
			"- Common skills: relevant technical skills for the title, domain knowledge, problem-solving, communication, and measurable achievements.\n"+
			"- Typical deliverables: project outcomes, metrics/KPIs, and domain-specific examples.",
		title)
}

// skillOverlap splits declared skills into those mentioned by the role text
// and those absent from it.
func skillOverlap(skills []string, roleText string) (matched, missing []string) {
	lowerRole := strings.ToLower(roleText)
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lowerRole, strings.ToLower(trimmed)) {
			matched = append(matched, trimmed)
		} else {
			missing = append(missing, trimmed)
		}
	}
	return matched, missing
}

// overlapBase maps the overlap ratio onto [baseFloor, baseFloor+baseSpan].
// With the bounded model adjustment this keeps zero-overlap profiles under
// 20 and full-overlap profiles over 80.
func overlapBase(matched, total int) int {
	if total <= 0 {
		return baseFloor
	}
	return baseFloor + (baseSpan*matched)/total
}

func clampAdjustment(adj int) int {
	if adj > maxAdjustment {
		return maxAdjustment
	}
	if adj < -maxAdjustment {
		return -maxAdjustment
	}
	return adj
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
