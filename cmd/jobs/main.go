package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/core/ai"
	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/core/scraper"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/infrastructure/store"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// Scheduled batch entrypoint. Run from cron or a one-off shell:
//
//	jobs -job=aliases -limit=100
//	jobs -job=aliases -dry-run
//	jobs -job=embeddings -limit=50
//	jobs -job=cooking-times -limit=50
func main() {
	jobName := flag.String("job", "", "job to run: aliases, embeddings or cooking-times")
	limit := flag.Int("limit", 0, "batch size limit (0 uses the configured default)")
	dryRun := flag.Bool("dry-run", false, "log intended actions without writing")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	if *jobName == "" {
		fmt.Fprintln(os.Stderr, "usage: jobs -job=aliases|embeddings|cooking-times [-limit=N] [-dry-run]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	st, err := store.Open(&cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *jobName {
	case "aliases":
		job := recipe.NewAliasJob(st, ai.NewClient(&cfg.OpenRouter), cfg.AliasJob.BatchLimit)
		result, err := job.Run(ctx, recipe.AliasJobOptions{Limit: *limit, DryRun: *dryRun})
		if err != nil {
			common.LogFatal("alias job failed", zap.Error(err))
		}
		common.LogInfo("alias job done",
			zap.Int("processed", result.Processed),
			zap.Int("aliases_created", result.AliasesCreated),
			zap.Int("new_ingredients", result.NewIngredientsCreated),
			zap.Strings("errors", result.Errors),
		)
		if len(result.Errors) > 0 {
			os.Exit(1)
		}

	case "embeddings":
		svc := newRecipeService(cfg, st)
		result, err := svc.BackfillEmbeddings(ctx, batchLimit(*limit, cfg.AliasJob.BatchLimit))
		if err != nil {
			common.LogFatal("embedding backfill failed", zap.Error(err))
		}
		logBackfill("embedding backfill done", result)

	case "cooking-times":
		svc := newRecipeService(cfg, st)
		result, err := svc.BackfillCookingTimes(ctx, batchLimit(*limit, cfg.AliasJob.BatchLimit))
		if err != nil {
			common.LogFatal("cooking-time backfill failed", zap.Error(err))
		}
		logBackfill("cooking-time backfill done", result)

	default:
		fmt.Fprintf(os.Stderr, "unknown job %q\n", *jobName)
		os.Exit(2)
	}
}

func newRecipeService(cfg *config.Config, st *store.Store) *recipe.Service {
	return recipe.NewService(
		st,
		ai.NewEmbeddingClient(&cfg.Embedding),
		scraper.NewFetcher(&cfg.Scraper),
		cfg.Embedding.MaxRetries,
	)
}

func batchLimit(flagValue, fallback int) int {
	if flagValue > 0 {
		return flagValue
	}
	return fallback
}

func logBackfill(msg string, result *recipe.BackfillResult) {
	common.LogInfo(msg,
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Strings("errors", result.Errors),
	)
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
