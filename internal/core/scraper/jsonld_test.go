package scraper

import "testing"

func TestExtractRecipeFromJSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@type":"Recipe","name":"豚肉と人参の煮物","author":{"name":"クックパッド"},
"image":"https://example.com/img.jpg",
"recipeIngredient":["200g 豚肉","1本 にんじん"],"cookTime":"PT20M"}
</script></head></html>`

	ext := ExtractRecipeFromJSONLD(html, "https://cookpad.com/recipe/123")
	if ext == nil {
		t.Fatal("expected extraction, got nil")
	}
	if ext.Title != "豚肉と人参の煮物" {
		t.Errorf("title = %q", ext.Title)
	}
	if ext.SourceName != "クックパッド" {
		t.Errorf("sourceName = %q", ext.SourceName)
	}
	if ext.ImageURL != "https://example.com/img.jpg" {
		t.Errorf("imageUrl = %q", ext.ImageURL)
	}
	if ext.CookingTimeMinutes == nil || *ext.CookingTimeMinutes != 20 {
		t.Errorf("cookingTimeMinutes = %v, want 20", ext.CookingTimeMinutes)
	}
	if len(ext.Ingredients) != 2 || ext.Ingredients[0] != "豚肉" || ext.Ingredients[1] != "にんじん" {
		t.Errorf("ingredients = %v", ext.Ingredients)
	}
}

func TestExtractRecipeFromJSONLDRejectsEmptyIngredients(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type":"Recipe","name":"パンケーキ","recipeIngredient":[]}
</script>`

	if ext := ExtractRecipeFromJSONLD(html, "https://example.com/r"); ext != nil {
		t.Errorf("recipe without ingredients must be rejected, got %+v", ext)
	}
}

func TestExtractRecipeFromJSONLDSkipsNonStringIngredients(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type":"Recipe","name":"シチュー",
"recipeIngredient":["2個 じゃがいも",{"name":"にんじん"},"1個 玉ねぎ"]}
</script>`

	ext := ExtractRecipeFromJSONLD(html, "https://example.com/r")
	if ext == nil {
		t.Fatal("expected extraction, got nil")
	}
	// The object entry is dropped; the string entries after it survive.
	if len(ext.Ingredients) != 2 || ext.Ingredients[0] != "じゃがいも" || ext.Ingredients[1] != "玉ねぎ" {
		t.Errorf("ingredients = %v", ext.Ingredients)
	}
}

func TestExtractRecipeFromJSONLDGraphWrapper(t *testing.T) {
	html := `<script type="application/ld+json">
{"@graph":[{"@type":"WebPage","name":"page"},
{"@type":"Recipe","name":"カレー","recipeIngredient":["じゃがいも 2個"]}]}
</script>`

	ext := ExtractRecipeFromJSONLD(html, "https://www.delishkitchen.tv/r/1")
	if ext == nil {
		t.Fatal("expected extraction from @graph, got nil")
	}
	if ext.Title != "カレー" {
		t.Errorf("title = %q", ext.Title)
	}
	// No author: source name falls back to the capitalized first DNS label.
	if ext.SourceName != "Delishkitchen" {
		t.Errorf("sourceName = %q, want Delishkitchen", ext.SourceName)
	}
}

func TestExtractRecipeFromJSONLDRootArray(t *testing.T) {
	html := `<script type="application/ld+json">
[{"@type":"BreadcrumbList"},{"@type":["Recipe","Thing"],"name":"唐揚げ","recipeIngredient":["鶏もも肉 300g"]}]
</script>`

	ext := ExtractRecipeFromJSONLD(html, "https://example.com/r")
	if ext == nil || ext.Title != "唐揚げ" {
		t.Fatalf("root-array extraction failed: %+v", ext)
	}
}

func TestExtractImageURLForms(t *testing.T) {
	tests := []struct {
		name  string
		image interface{}
		want  string
	}{
		{"string", "https://a/img.jpg", "https://a/img.jpg"},
		{"object", map[string]interface{}{"url": "https://b/img.jpg"}, "https://b/img.jpg"},
		{"array of strings", []interface{}{"https://c/img.jpg", "x"}, "https://c/img.jpg"},
		{"array of objects", []interface{}{map[string]interface{}{"url": "https://d/img.jpg"}}, "https://d/img.jpg"},
		{"nil", nil, ""},
		{"empty array", []interface{}{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractImageURL(tt.image); got != tt.want {
				t.Errorf("extractImageURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseISODurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT20M", 20},
		{"PT1H", 60},
		{"PT1H30M", 90},
		{"PT90S", 1},
		{"PT0M", 0},
		{"20 minutes", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseISODurationMinutes(tt.in); got != tt.want {
			t.Errorf("parseISODurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDomainName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.kurashiru.com/recipes/1", "Kurashiru"},
		{"https://cookpad.com/recipe/2", "Cookpad"},
		{"not a url", ""},
	}

	for _, tt := range tests {
		if got := DomainName(tt.in); got != tt.want {
			t.Errorf("DomainName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
