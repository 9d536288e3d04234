package recipe

import (
	"context"
	"fmt"
	"strings"
)

// ObjectGenerator is the language-model surface used by the LLM extractor
// and the alias reconciliation job: one schema-constrained structured call.
type ObjectGenerator interface {
	GenerateObject(ctx context.Context, prompt string, out interface{}) error
}

// ingredientMasterList is the reference vocabulary handed to the model so
// extracted ingredient wording lines up with the canonical catalog.
var ingredientMasterList = []string{
	"なす", "きゅうり", "トマト", "にんじん", "たまねぎ", "じゃがいも",
	"さつまいも", "かぼちゃ", "だいこん", "かぶ", "れんこん", "ごぼう",
	"ながいも", "さといも", "キャベツ", "はくさい", "レタス", "ほうれんそう",
	"こまつな", "チンゲンサイ", "みずな", "もやし", "ブロッコリー",
	"カリフラワー", "アスパラガス", "セロリ", "ねぎ", "にら", "にんにく",
	"しょうが", "ピーマン", "パプリカ", "とうがらし", "ズッキーニ", "ゴーヤ",
	"オクラ", "さやいんげん", "さやえんどう", "スナップえんどう", "そらまめ",
	"えだまめ", "とうもろこし", "たけのこ", "みょうが", "しそ", "みつば",
	"パセリ", "バジル", "パクチー", "かいわれだいこん",
	"しいたけ", "しめじ", "えのき", "まいたけ", "エリンギ", "マッシュルーム",
	"なめこ", "きくらげ",
	"鶏肉", "鶏むね肉", "鶏もも肉", "鶏ささみ", "鶏手羽", "鶏ひき肉",
	"豚肉", "豚バラ肉", "豚ロース", "豚こま肉", "豚ひき肉",
	"牛肉", "牛こま肉", "牛ひき肉", "合いびき肉",
	"ベーコン", "ハム", "ソーセージ", "ラム肉",
	"鮭", "さば", "さんま", "あじ", "いわし", "ぶり", "まぐろ", "かつお",
	"たら", "たい", "さわら", "ほっけ", "めかじき",
	"えび", "いか", "たこ", "あさり", "しじみ", "ほたて", "かに",
	"ちくわ", "かまぼこ", "さつまあげ", "ツナ缶", "しらす", "たらこ", "明太子",
	"たまご", "うずらのたまご", "牛乳", "生クリーム", "バター", "チーズ",
	"ヨーグルト",
	"豆腐", "絹ごし豆腐", "木綿豆腐", "厚揚げ", "油揚げ", "がんもどき",
	"納豆", "おから", "豆乳", "大豆", "高野豆腐",
	"ごはん", "もち", "うどん", "そば", "そうめん", "中華麺", "パスタ",
	"食パン", "春雨", "ビーフン", "こんにゃく", "しらたき",
	"わかめ", "ひじき", "のり", "昆布", "切り干しだいこん", "干ししいたけ",
	"梅干し", "キムチ", "餃子の皮", "春巻きの皮",
	"アボカド", "レモン", "りんご", "バナナ", "くるみ", "アーモンド", "ごま",
}

// LLMExtraction is the schema-constrained output of the LLM extractor.
type LLMExtraction struct {
	Title              string   `json:"title"`
	SourceName         string   `json:"sourceName"`
	ImageURL           string   `json:"imageUrl"`
	MainIngredients    []string `json:"mainIngredients"`
	CookingTimeMinutes *int     `json:"cookingTimeMinutes"`
}

// LLMExtractor is the last-resort extraction strategy: it feeds readable
// page text to the model with a constrained output schema.
type LLMExtractor struct {
	generator     ObjectGenerator
	contentMaxLen int
}

// NewLLMExtractor creates the extractor. contentMaxLen bounds how much
// page text enters the prompt.
func NewLLMExtractor(generator ObjectGenerator, contentMaxLen int) *LLMExtractor {
	return &LLMExtractor{
		generator:     generator,
		contentMaxLen: contentMaxLen,
	}
}

// Extract asks the model for recipe info from readable page text. The
// ingredient list is capped to five even if the model ignores the schema.
func (e *LLMExtractor) Extract(ctx context.Context, content, sourceURL string) (*LLMExtraction, error) {
	var out LLMExtraction
	if err := e.generator.GenerateObject(ctx, e.buildPrompt(content, sourceURL), &out); err != nil {
		return nil, fmt.Errorf("recipe extraction failed: %w", err)
	}
	if len(out.MainIngredients) > 5 {
		out.MainIngredients = out.MainIngredients[:5]
	}
	return &out, nil
}

func (e *LLMExtractor) buildPrompt(content, sourceURL string) string {
	truncated := content
	if runes := []rune(content); len(runes) > e.contentMaxLen {
		truncated = string(runes[:e.contentMaxLen])
	}

	return fmt.Sprintf(`あなたはレシピ情報を抽出する専門のAIアシスタントです。
以下のWebページコンテンツからレシピ情報を抽出してください。

## 抽出ルール
1. レシピ名: ページのメインタイトルを使用
2. 元サイト名: ドメインから推測（例: cookpad.com → クックパッド）
3. メイン食材:
   - 調味料を除外（塩、醤油、砂糖、みりん、酒、油、だし、酢、味噌、マヨネーズ、ケチャップ、ソース等）
   - 主要な食材のみ抽出（最大5つ）
   - 可能な限り以下のリストの表記に合わせる
4. 画像URL: メイン料理画像の絶対URL（見つからない場合は空文字）
5. 調理時間: 分単位の整数で返す（「30分」→30、「1時間」→60、「1時間30分」→90）。不明な場合は null

JSONオブジェクトで出力してください: {"title": string, "sourceName": string, "imageUrl": string, "mainIngredients": string[], "cookingTimeMinutes": number|null}

## 参照用食材リスト
%s

## URL
%s

## コンテンツ
%s`, strings.Join(ingredientMasterList, ", "), sourceURL, truncated)
}
