package recipe

import "testing"

func TestNormalizeIngredientName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quantity with unit attached", "豚肉細切れ200g", "豚肉細切れ"},
		{"chicken with grams", "鶏もも肉300g", "鶏もも肉"},
		{"count word", "卵2個", "卵"},
		{"count word honbo", "なす2本", "なす"},
		{"pinch", "塩 少々", "塩"},
		{"to taste", "こしょう 適量", "こしょう"},
		{"tablespoon", "ごま油 大さじ1", "ごま油"},
		{"teaspoon", "砂糖 小さじ2", "砂糖"},
		{"parens removed contents kept", "鶏もも肉（皮なし）", "鶏もも肉皮なし"},
		{"ascii parens", "豆腐(絹ごし)", "豆腐絹ごし"},
		{"soy sauce brand", "キッコーマン醤油", "醤油"},
		{"soy sauce brand 2", "ヤマサ醤油", "醤油"},
		{"mirin brand", "マンジョウ本みりん", "本みりん"},
		{"vinegar brand", "ミツカン穀物酢", "穀物酢"},
		{"ketchup brand", "カゴメトマトケチャップ", "トマトケチャップ"},
		{"mayo brand", "キユーピーマヨネーズ", "マヨネーズ"},
		{"brand plus amount", "キッコーマン醤油 大さじ1", "醤油"},
		{"oil brand plus amount", "日清サラダ油 大さじ2", "サラダ油"},
		{"trailing bare number", "醤油 1", "醤油"},
		{"leading fraction", "1/2 玉ねぎ", "玉ねぎ"},
		{"leading count", "2 にんじん", "にんじん"},
		{"counter word in name kept", "玉ねぎ", "玉ねぎ"},
		{"tama after digit kept", "にんにく1玉", "にんにく1玉"},
		{"kabu after digit kept", "しめじ1株", "しめじ1株"},
		{"fusa after digit kept", "ぶどう1房", "ぶどう1房"},
		{"spaced kabu kept", "しめじ 1株", "しめじ 1株"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"already normalized", "なす", "なす"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIngredientName(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeIngredientName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIngredientNameIdempotent(t *testing.T) {
	inputs := []string{
		"豚肉細切れ200g",
		"キッコーマン醤油 大さじ1",
		"鶏もも肉（皮なし） 300g",
		"1/2 玉ねぎ",
		"なす",
		"しめじ 1株",
	}

	for _, in := range inputs {
		once := NormalizeIngredientName(in)
		twice := NormalizeIngredientName(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestIsSeasoning(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"醤油", true},
		{"塩", true},
		{"ごま油", true},
		{"塩こしょう", true},
		{"片栗粉", true},
		{"豚バラ肉", false},
		{"玉ねぎ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSeasoning(tt.in); got != tt.want {
			t.Errorf("IsSeasoning(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
