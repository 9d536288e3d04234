package recipe

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/pkg/common"
)

// validCategories is the fixed category enum for canonical ingredients.
// Anything else from the model falls back to defaultCategory.
var validCategories = []string{
	"野菜",
	"肉",
	"魚介",
	"きのこ",
	"卵・乳製品",
	"豆腐・大豆製品",
	"穀物・麺類",
	"その他",
}

const defaultCategory = "その他"

// AliasJobStore is the storage surface for the reconciliation batch.
type AliasJobStore interface {
	UnmatchedCounts(ctx context.Context, limit int) ([]UnmatchedCount, error)
	ListReviewedIngredients(ctx context.Context) ([]CatalogEntry, error)
	InsertAlias(ctx context.Context, alias, ingredientID string) (InsertOutcome, error)
	InsertProvisionalIngredient(ctx context.Context, name, category string) (string, InsertOutcome, error)
	DeleteUnmatched(ctx context.Context, normalizedNames []string) error
}

// AliasJobOptions tunes one reconciliation run.
type AliasJobOptions struct {
	Limit  int
	DryRun bool
}

// AliasJobResult summarizes one reconciliation run.
type AliasJobResult struct {
	Processed             int      `json:"processed"`
	AliasesCreated        int      `json:"aliasesCreated"`
	NewIngredientsCreated int      `json:"newIngredientsCreated"`
	Errors                []string `json:"errors"`
}

// AliasJob retroactively resolves the unmatched-ingredient backlog: one
// model call classifies a batch of strings against the reviewed catalog,
// producing aliases or provisional new ingredients.
type AliasJob struct {
	store      AliasJobStore
	generator  ObjectGenerator
	batchLimit int
}

// NewAliasJob creates the reconciliation job.
func NewAliasJob(store AliasJobStore, generator ObjectGenerator, batchLimit int) *AliasJob {
	return &AliasJob{
		store:      store,
		generator:  generator,
		batchLimit: batchLimit,
	}
}

type aliasDecision struct {
	Input                 string  `json:"input"`
	MatchedID             *string `json:"matchedId"`
	IsNewIngredient       bool    `json:"isNewIngredient"`
	NewIngredientCategory string  `json:"newIngredientCategory"`
	Reason                string  `json:"reason"`
}

type aliasDecisions struct {
	Results []aliasDecision `json:"results"`
}

// Run executes one batch. If the model call fails the run aborts with a
// single aggregate error and the queue is left untouched for the next
// attempt. Per-row write failures skip only that row: it stays queued,
// is not counted as processed, and reappears in a future run.
func (j *AliasJob) Run(ctx context.Context, opts AliasJobOptions) (*AliasJobResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = j.batchLimit
	}

	result := &AliasJobResult{}

	unmatched, err := j.store.UnmatchedCounts(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(unmatched) == 0 {
		common.LogInfo("no unmatched ingredients to reconcile")
		return result, nil
	}

	catalog, err := j.store.ListReviewedIngredients(ctx)
	if err != nil {
		return nil, err
	}

	common.LogInfo("reconciling unmatched ingredients",
		zap.Int("unmatched", len(unmatched)),
		zap.Int("catalog_size", len(catalog)),
		zap.Bool("dry_run", opts.DryRun))

	names := make([]string, 0, len(unmatched))
	for _, u := range unmatched {
		names = append(names, u.NormalizedName)
	}

	var decisions aliasDecisions
	if err := j.generator.GenerateObject(ctx, buildAliasPrompt(names, catalog), &decisions); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("LLM matching failed: %v", err))
		return result, nil
	}

	var processedNames []string
	for _, d := range decisions.Results {
		matched := "new"
		if d.MatchedID != nil {
			matched = *d.MatchedID
		}
		common.LogInfo("alias decision",
			zap.String("input", d.Input),
			zap.String("matched", matched),
			zap.String("reason", d.Reason))

		if opts.DryRun {
			processedNames = append(processedNames, d.Input)
			result.Processed++
			continue
		}

		switch {
		case d.MatchedID != nil:
			outcome, err := j.store.InsertAlias(ctx, d.Input, *d.MatchedID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to insert alias %q: %v", d.Input, err))
				continue
			}
			if outcome == Inserted {
				result.AliasesCreated++
			}
			processedNames = append(processedNames, d.Input)

		case d.IsNewIngredient:
			_, outcome, err := j.store.InsertProvisionalIngredient(ctx, d.Input, resolveCategory(d.NewIngredientCategory))
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to insert ingredient %q: %v", d.Input, err))
				continue
			}
			if outcome == Inserted {
				result.NewIngredientsCreated++
			}
			processedNames = append(processedNames, d.Input)

		default:
			// The model declined to classify (a seasoning or a junk
			// string). Still processed: it leaves the queue.
			processedNames = append(processedNames, d.Input)
		}

		result.Processed++
	}

	if !opts.DryRun && len(processedNames) > 0 {
		if err := j.store.DeleteUnmatched(ctx, processedNames); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete processed entries: %v", err))
		}
	}

	common.LogInfo("reconciliation finished",
		zap.Int("processed", result.Processed),
		zap.Int("aliases_created", result.AliasesCreated),
		zap.Int("new_ingredients", result.NewIngredientsCreated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func resolveCategory(category string) string {
	for _, c := range validCategories {
		if c == category {
			return category
		}
	}
	return defaultCategory
}

func buildAliasPrompt(names []string, catalog []CatalogEntry) string {
	var catalogList strings.Builder
	for _, entry := range catalog {
		fmt.Fprintf(&catalogList, "- %s (id: %s)\n", entry.Name, entry.ID)
	}

	var unmatchedList strings.Builder
	for i, name := range names {
		fmt.Fprintf(&unmatchedList, "%d. %s\n", i+1, name)
	}

	return fmt.Sprintf(`あなたは食材名のマッチングを行う専門家です。

## タスク
以下の「未マッチ食材リスト」の各食材が、「マスター食材リスト」のどれに該当するか判定してください。

## 判定ルール
1. 表記揺れ（カタカナ/ひらがな、漢字の違い）は同一食材として扱う
   例: 「長ネギ」→「ねぎ」、「ニンジン」→「にんじん」
2. 調理形態の違い（薄切り、細切れ等）は同一食材として扱う
   例: 「豚バラ薄切り肉」→「豚バラ肉」
3. ただし、食材の種類が異なる場合は区別する
   例: 「豚バラ肉」と「豚こま肉」は別物
4. マスターに該当する食材がない場合は新規食材として判定
5. 調味料や一般的でない食材は新規食材として追加しない（isNewIngredient: false, matchedId: null）

## マスター食材リスト
%s
## 未マッチ食材リスト
%s
## 出力
JSONオブジェクト {"results": [...]} として、各食材について以下を判定してください：
- input: 入力された食材名
- matchedId: マッチするマスター食材のID（マッチしない場合はnull）
- isNewIngredient: 新規食材として追加すべきか
- newIngredientCategory: 新規食材の場合のカテゴリ（%s）
- reason: 判定理由（簡潔に）`,
		catalogList.String(), unmatchedList.String(), strings.Join(validCategories, ", "))
}
