package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	agentsx "github.com/careerninja/learntube/agent/agents"
	contractx "github.com/careerninja/learntube/agent/contract"
	memoryx "github.com/careerninja/learntube/agent/memory"
	orchestratorx "github.com/careerninja/learntube/agent/orchestrator"
	statex "github.com/careerninja/learntube/agent/state"
	apifyx "github.com/careerninja/learntube/pkg/apify"
	configx "github.com/careerninja/learntube/pkg/config"
	groqx "github.com/careerninja/learntube/pkg/groq"
	linkedinx "github.com/careerninja/learntube/pkg/linkedin"
	_ "github.com/careerninja/learntube/pkg/logger/autoload"
)

type AppConfig struct {
	UserID string `envconfig:"USER_ID" split_words:"true" default:"local-user"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("APP")

	groqCfg := configx.MustNew[groqx.Config]("GROQ")
	generator := groqx.MustNew(*groqCfg)

	scrapeClient := newScrapeClient()
	memStore := newMemoryStore(ctx)

	storeCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	store, err := statex.NewUpstashRedisStore(*storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create session store")
	}

	agentCfg := configx.MustNew[agentsx.Config]("AGENT")
	registry := agentsx.NewRegistry(generator, scrapeClient, memStore, *agentCfg)

	service, err := orchestratorx.New(store, registry, memStore)
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	runREPL(ctx, service, appCfg.UserID)
}

// newScrapeClient prefers the Apify actor and falls back to scraping public
// profile pages directly when no Apify credentials are configured.
func newScrapeClient() contractx.ScrapeClient {
	apifyCfg, err := configx.New[apifyx.Config]("APIFY")
	if err == nil {
		client, cerr := apifyx.NewClient(*apifyCfg)
		if cerr == nil {
			return client
		}
		log.Warn().Err(cerr).Msg("apify client unavailable, using public scraper")
	}
	linkedinCfg := configx.MustNew[linkedinx.Config]("LINKEDIN")
	return linkedinx.NewPublicScraper(*linkedinCfg)
}

// newMemoryStore prefers Postgres and falls back to process-local memory
// when no DSN is configured.
func newMemoryStore(ctx context.Context) contractx.MemoryStore {
	pgCfg, err := configx.New[memoryx.PostgresConfig]("POSTGRES")
	if err != nil {
		log.Warn().Err(err).Msg("postgres not configured, long-term memory is process-local")
		return memoryx.NewInProcStore()
	}
	store, err := memoryx.NewPostgresStore(*pgCfg)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, long-term memory is process-local")
		return memoryx.NewInProcStore()
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure memory schema")
	}
	return store
}

func runREPL(ctx context.Context, service *orchestratorx.Service, userID string) {
	sessionID := uuid.NewString()
	fmt.Printf("session %s ready. Share a profile URL and ask me to analyze it.\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		result, err := service.HandleTurn(ctx, sessionID, userID, line)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}
		fmt.Println(result.ResponseText)
	}
}
