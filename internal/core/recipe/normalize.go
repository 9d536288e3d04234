package recipe

import (
	"regexp"
	"strings"
)

// Quantity and unit stripping for raw ingredient strings. The unit
// vocabulary is deliberately conservative: counter words that can be part
// of an ingredient's own name (玉, 株, 房) are not treated as units, so
// 玉ねぎ and しめじ1株 survive intact. A unit is only removed when a
// number precedes it.
var (
	quantityUnitPattern = regexp.MustCompile(`[0-9０-９./〜～約]+\s*(?:(?i:kg|ml|mm|cm|cc|g|l)|ℓ|個|本|切れ|枚|丁|束|袋|パック|合|片|かけ|杯|尾|匹|人分)`)

	bracketPattern = regexp.MustCompile(`[（()）【】\[\]「」『』]`)

	qualifierPattern = regexp.MustCompile(`(?i)少々|適量|お好みで|大さじ|小さじ|カップ|ひとつまみ|適宜|ひとかけ|少量|たっぷり|お好み|to taste`)

	// Brand prefixes for common condiment families; the brand goes,
	// the product noun stays.
	brandPrefixPattern = regexp.MustCompile(`^(?:キッコーマン|ヤマサ|マンジョウ|ミツカン|カゴメ|キユーピー|キューピー|日清|味の素)\s*`)

	bareNumberPattern = regexp.MustCompile(`^[0-9０-９./〜～約]+$`)
)

// NormalizeIngredientName strips quantities, units, amount qualifiers and
// brand prefixes from a raw ingredient string. Idempotent.
//
//	"豚肉細切れ200g"          → "豚肉細切れ"
//	"ごま油 大さじ1"          → "ごま油"
//	"鶏もも肉（皮なし）"      → "鶏もも肉皮なし"
//	"キッコーマン醤油 大さじ1" → "醤油"
func NormalizeIngredientName(raw string) string {
	s := quantityUnitPattern.ReplaceAllString(raw, "")
	s = bracketPattern.ReplaceAllString(s, "")
	s = qualifierPattern.ReplaceAllString(s, "")
	s = brandPrefixPattern.ReplaceAllString(s, "")

	// Drop tokens that are nothing but a number or fraction, e.g. the
	// leftover "1" of "醤油 大さじ1".
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if bareNumberPattern.MatchString(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// SeasoningKeywords are condiments and base staples excluded from
// canonical matching: they are not useful browse or filter dimensions.
var SeasoningKeywords = []string{
	"塩", "砂糖", "醤油", "しょうゆ", "みりん", "酒", "料理酒",
	"油", "サラダ油", "ごま油", "オリーブオイル", "オリーブ油",
	"酢", "味噌", "みそ", "だし", "出汁", "ダシ",
	"マヨネーズ", "ケチャップ", "ソース", "ウスターソース",
	"こしょう", "コショウ", "胡椒", "塩こしょう", "黒こしょう",
	"片栗粉", "薄力粉", "強力粉", "小麦粉", "パン粉",
	"コンソメ", "ブイヨン", "鶏ガラスープ",
	"溶き卵", "ねぎ刻み", "細ねぎ", "細ねぎ刻み",
}

// IsSeasoning reports whether a normalized name contains a seasoning
// keyword.
func IsSeasoning(name string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range SeasoningKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
