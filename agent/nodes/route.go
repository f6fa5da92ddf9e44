package turnnode

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/careerninja/learntube/agent/contract"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// Route turns the raw message into an ordered agent plan. Routing is
// keyword driven and never checks prerequisites; an agent that is missing
// its inputs reports that itself, which keeps the failure taxonomy in one
// place.
func Route(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("graph state is nil")
	}

	input := contractx.TurnInput{Message: in.Message}
	lower := strings.ToLower(in.Message)

	if url := urlPattern.FindString(in.Message); url != "" {
		input.ProfileURL = strings.TrimRight(url, ".,;)")
	}

	var plan []contractx.AgentName
	if input.ProfileURL != "" {
		plan = append(plan, contractx.AgentScraper)
	}

	switch {
	case wantsJobFit(lower):
		input.TargetRole = extractTargetRole(in.Message)
		plan = append(plan, contractx.AgentJobFit)
	case wantsRewrite(lower):
		input.Section = extractSection(lower)
		plan = append(plan, contractx.AgentRewrite)
	case wantsAnalysis(lower):
		plan = append(plan, contractx.AgentAnalysis)
	}

	if len(plan) == 0 {
		plan = append(plan, contractx.AgentChat)
	}

	in.Input = input
	in.Plan = plan
	return in, nil
}

func wantsAnalysis(lower string) bool {
	for _, kw := range []string{"analyze", "analyse", "analysis", "review my profile", "evaluate my profile", "how is my profile"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func wantsJobFit(lower string) bool {
	for _, kw := range []string{"job fit", "fit for", "match for", "good fit", "qualified for", "suited for", "score me for"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func wantsRewrite(lower string) bool {
	for _, kw := range []string{"rewrite", "rework", "improve my", "polish my", "better headline", "better about", "better summary"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// extractTargetRole pulls the role name out of phrasings like
// "am I a good fit for Senior Backend Engineer?".
func extractTargetRole(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range []string{" fit for ", " match for ", " qualified for ", " suited for ", " score me for ", " as a ", " as an "} {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		role := message[idx+len(marker):]
		role = strings.TrimRight(strings.TrimSpace(role), "?.!")
		role = strings.TrimPrefix(role, "the ")
		role = strings.TrimSuffix(role, " role")
		role = strings.TrimSuffix(role, " position")
		if role != "" {
			return role
		}
	}
	return ""
}

func extractSection(lower string) string {
	switch {
	case strings.Contains(lower, "headline"):
		return "headline"
	case strings.Contains(lower, "about") || strings.Contains(lower, "summary"):
		return "about"
	case strings.Contains(lower, "experience"):
		return "experience"
	default:
		return ""
	}
}
