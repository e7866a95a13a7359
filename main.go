package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	agentsx "github.com/cartup/cartup-agent/agent/agents"
	llmx "github.com/cartup/cartup-agent/agent/llm"
	runtimex "github.com/cartup/cartup-agent/agent/runtime"
	statex "github.com/cartup/cartup-agent/agent/state"
	storex "github.com/cartup/cartup-agent/agent/store"
	toolx "github.com/cartup/cartup-agent/agent/tool"
	configx "github.com/cartup/cartup-agent/pkg/config"
	_ "github.com/cartup/cartup-agent/pkg/logger/autoload"
	openrouterx "github.com/cartup/cartup-agent/pkg/openrouter"
)

type AppConfig struct {
	SessionID string `envconfig:"SESSION_ID"`
	Language  string `envconfig:"LANGUAGE" default:"en-IN"`

	// PostgresDSN selects the persistent store; empty runs on the seeded
	// in-memory store.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// SnapshotEnabled turns on session state persistence via UPSTASH_*.
	SnapshotEnabled bool `envconfig:"SNAPSHOT_ENABLED" default:"false"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("CARTUP")

	ctx := context.Background()

	language, err := statex.ParseLanguage(appCfg.Language)
	if err != nil {
		log.Fatal().Err(err).Str("language", appCfg.Language).Msg("invalid language")
	}

	st, cleanup, err := buildStore(ctx, appCfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer cleanup()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	client := openrouterx.NewClient(*openRouterCfg)
	if client == nil {
		log.Fatal().Msg("openrouter client init failed, check OPENROUTER_API_KEY")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if llmCfg.Model == "" {
		llmCfg.Model = openRouterCfg.Model
	}
	model, err := llmx.NewModel(client, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("model init failed")
	}

	voices := configx.MustNew[agentsx.VoiceConfig]("VOICE")
	defs := agentsx.All(*voices)

	executor, err := toolx.NewExecutor(st, agentsx.DeclaredTools(defs))
	if err != nil {
		log.Fatal().Err(err).Msg("tool executor init failed")
	}

	sessionID := strings.TrimSpace(appCfg.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var snapshots statex.SnapshotStore
	if appCfg.SnapshotEnabled {
		upstashCfg := configx.MustNew[statex.UpstashConfig]("UPSTASH")
		snapshots, err = statex.NewUpstashSnapshotStore(*upstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("snapshot store init failed")
		}
	}

	ud := statex.New(language)
	if snapshots != nil {
		restored, err := snapshots.Load(ctx, sessionID)
		switch {
		case err == nil:
			ud = restored
			log.Info().Str("session", sessionID).Msg("restored session state")
		case errors.Is(err, statex.ErrSnapshotNotFound):
		default:
			log.Warn().Err(err).Msg("snapshot load failed, starting fresh")
		}
	}

	session, err := runtimex.NewSession(model, executor, defs, ud, runtimex.Config{
		SessionID: sessionID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("session init failed")
	}

	greeting, err := session.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("session start failed")
	}
	fmt.Printf("[%s] %s\n", session.ActiveAgent(), greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			break
		}

		reply, err := session.HandleUserText(ctx, text)
		if err != nil {
			log.Fatal().Err(err).Msg("session terminated")
		}
		fmt.Printf("[%s] %s\n", session.ActiveAgent(), reply)

		if snapshots != nil {
			if err := snapshots.Save(ctx, sessionID, session.UserData()); err != nil {
				log.Warn().Err(err).Msg("snapshot save failed")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("stdin read failed")
	}
}

func buildStore(ctx context.Context, dsn string) (storex.Store, func(), error) {
	if strings.TrimSpace(dsn) == "" {
		log.Info().Msg("using seeded in-memory store")
		return storex.NewSeededMemoryStore(), func() {}, nil
	}

	pg, err := storex.NewPostgresStore(storex.PostgresConfig{DSN: dsn})
	if err != nil {
		return nil, nil, err
	}
	if err := pg.CreateSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	log.Info().Msg("using postgres store")
	return pg, func() { pg.Close() }, nil
}
