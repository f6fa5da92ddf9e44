// Package agents wires the concrete agent units behind the registry the
// orchestrator depends on.
package agents

import (
	analysisx "github.com/careerninja/learntube/agent/agents/analysis"
	chatx "github.com/careerninja/learntube/agent/agents/chat"
	jobfitx "github.com/careerninja/learntube/agent/agents/jobfit"
	memoryx "github.com/careerninja/learntube/agent/agents/memoryagent"
	rewritex "github.com/careerninja/learntube/agent/agents/rewrite"
	scraperx "github.com/careerninja/learntube/agent/agents/scraper"
	contractx "github.com/careerninja/learntube/agent/contract"
	promptx "github.com/careerninja/learntube/agent/prompt"
)

type registryImpl struct {
	scraper  contractx.AgentUnit
	analysis contractx.AgentUnit
	jobFit   contractx.AgentUnit
	rewrite  contractx.AgentUnit
	memory   contractx.AgentUnit
	chat     contractx.AgentUnit
}

func (r *registryImpl) Scraper() contractx.AgentUnit  { return r.scraper }
func (r *registryImpl) Analysis() contractx.AgentUnit { return r.analysis }
func (r *registryImpl) JobFit() contractx.AgentUnit   { return r.jobFit }
func (r *registryImpl) Rewrite() contractx.AgentUnit  { return r.rewrite }
func (r *registryImpl) Memory() contractx.AgentUnit   { return r.memory }
func (r *registryImpl) Chat() contractx.AgentUnit     { return r.chat }

// Config groups the per-agent tuning knobs.
type Config struct {
	Scraper  scraperx.Config  `envconfig:"SCRAPER"`
	Analysis analysisx.Config `envconfig:"ANALYSIS"`
	JobFit   jobfitx.Config   `envconfig:"JOB_FIT"`
	Rewrite  rewritex.Config  `envconfig:"REWRITE"`
	Chat     chatx.Config     `envconfig:"CHAT"`
}

func NewRegistry(generator contractx.Generator, scrapeClient contractx.ScrapeClient, memStore contractx.MemoryStore, cfg Config) contractx.Registry {
	prompts := promptx.LoadPromptSet()

	return &registryImpl{
		scraper:  scraperx.New(scrapeClient, cfg.Scraper),
		analysis: analysisx.New(generator, prompts.Analysis, cfg.Analysis),
		jobFit:   jobfitx.New(generator, prompts.JobFit, cfg.JobFit),
		rewrite:  rewritex.New(generator, prompts.Rewrite, cfg.Rewrite),
		memory:   memoryx.New(memStore),
		chat:     chatx.New(generator, prompts.Chat, cfg.Chat),
	}
}
