package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/analysis.txt
	analysisRaw string

	//go:embed template/jobfit.txt
	jobfitRaw string

	//go:embed template/rewrite.txt
	rewriteRaw string

	//go:embed template/chat.txt
	chatRaw string
)

// PromptSet holds loaded instruction templates.
type PromptSet struct {
	Analysis string
	JobFit   string
	Rewrite  string
	Chat     string
}

// LoadPromptSet returns a PromptSet with trimmed template strings.
// The embed is compile-time, so this is safe to call concurrently.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Analysis: strings.TrimSpace(analysisRaw),
		JobFit:   strings.TrimSpace(jobfitRaw),
		Rewrite:  strings.TrimSpace(rewriteRaw),
		Chat:     strings.TrimSpace(chatRaw),
	}
}

// Fill substitutes {{NAME}} placeholders in a template.
func Fill(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
