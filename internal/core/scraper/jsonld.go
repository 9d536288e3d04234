package scraper

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Extraction is the draft-shaped output shared by all content strategies.
type Extraction struct {
	Title              string
	SourceName         string
	ImageURL           string
	Ingredients        []string
	CookingTimeMinutes *int
}

var (
	jsonLdScriptPattern = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	isoDurationPattern  = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

	leadingQuantityPattern  = regexp.MustCompile(`(?i)^[\d/.〜～約]+\s*(g|kg|ml|cc|L|個|本|枚|切れ|尾|匹|合|カップ|cm|mm)?\s*`)
	leadingQualifierPattern = regexp.MustCompile(`^(大さじ|小さじ|適量|少々|お好みで?|ひとつまみ|適宜)[\d/.]*\s*`)
	leadingMarkerPattern    = regexp.MustCompile(`^[\s・]+`)
)

// ExtractRecipeFromJSONLD scans html for schema.org/Recipe structured data.
// A candidate without a usable ingredient list is rejected so the caller can
// advance to the next strategy.
func ExtractRecipeFromJSONLD(html, sourceURL string) *Extraction {
	for _, block := range extractJSONLDBlocks(html) {
		rec := findRecipeSchema(block)
		if rec == nil || len(rec.ingredients) == 0 {
			continue
		}
		cleaned := cleanIngredients(rec.ingredients)
		if len(cleaned) == 0 {
			continue
		}
		return &Extraction{
			Title:              rec.name,
			SourceName:         extractSourceName(rec.author, sourceURL),
			ImageURL:           extractImageURL(rec.image),
			Ingredients:        cleaned,
			CookingTimeMinutes: rec.cookingTime,
		}
	}
	return nil
}

type jsonLDRecipe struct {
	name        string
	image       interface{}
	ingredients []string
	author      interface{}
	cookingTime *int
}

func extractJSONLDBlocks(html string) []interface{} {
	var blocks []interface{}
	for _, m := range jsonLdScriptPattern.FindAllStringSubmatch(html, -1) {
		var parsed interface{}
		if err := json.Unmarshal([]byte(m[1]), &parsed); err != nil {
			continue
		}
		blocks = append(blocks, parsed)
	}
	return blocks
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// findRecipeSchema handles a direct Recipe object, a @graph wrapper array
// and a root-level array.
func findRecipeSchema(data interface{}) *jsonLDRecipe {
	if arr, ok := data.([]interface{}); ok {
		for _, item := range arr {
			if rec := findRecipeSchema(item); rec != nil {
				return rec
			}
		}
		return nil
	}

	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}

	if isRecipeType(obj["@type"]) {
		return parseRecipeObject(obj)
	}

	if graph, ok := obj["@graph"].([]interface{}); ok {
		for _, item := range graph {
			itemObj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if isRecipeType(itemObj["@type"]) {
				return parseRecipeObject(itemObj)
			}
		}
	}

	return nil
}

func parseRecipeObject(obj map[string]interface{}) *jsonLDRecipe {
	name, _ := obj["name"].(string)
	if name == "" {
		return nil
	}

	rec := &jsonLDRecipe{
		name:   name,
		image:  obj["image"],
		author: obj["author"],
	}

	if raw, ok := obj["recipeIngredient"].([]interface{}); ok {
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				continue
			}
			rec.ingredients = append(rec.ingredients, s)
		}
	}

	for _, field := range []string{"cookTime", "totalTime"} {
		if s, ok := obj[field].(string); ok {
			if minutes := parseISODurationMinutes(s); minutes > 0 {
				rec.cookingTime = &minutes
				break
			}
		}
	}

	return rec
}

// parseISODurationMinutes converts a PT#H#M#S duration into whole minutes.
// Returns 0 for anything unparseable.
func parseISODurationMinutes(s string) int {
	m := isoDurationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*60 + minutes
	if total == 0 && seconds > 0 {
		total = 1
	}
	return total
}

// extractImageURL tolerates a string, an object, or an array of either.
func extractImageURL(image interface{}) string {
	switch v := image.(type) {
	case string:
		return v
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		return extractImageURL(v[0])
	case map[string]interface{}:
		if u, ok := v["url"].(string); ok {
			return u
		}
	}
	return ""
}

func extractSourceName(author interface{}, sourceURL string) string {
	switch v := author.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok && name != "" {
			return name
		}
	case []interface{}:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]interface{}); ok {
				if name, ok := obj["name"].(string); ok && name != "" {
					return name
				}
			}
		}
	}
	return DomainName(sourceURL)
}

// DomainName derives a display name from a URL: the first DNS label with
// "www." stripped, capitalized.
func DomainName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain := strings.TrimPrefix(u.Hostname(), "www.")
	name := strings.SplitN(domain, ".", 2)[0]
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// cleanIngredients strips leading quantities and measure words so the
// strings enter the matcher as bare ingredient names.
func cleanIngredients(raw []string) []string {
	var out []string
	for _, item := range raw {
		cleaned := leadingQuantityPattern.ReplaceAllString(item, "")
		cleaned = leadingQualifierPattern.ReplaceAllString(cleaned, "")
		cleaned = leadingMarkerPattern.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
