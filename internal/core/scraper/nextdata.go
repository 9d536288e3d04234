package scraper

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Fallback for Next.js sites (Nadia and similar) that insert their JSON-LD
// client-side, leaving the server-rendered HTML without structured data.

const nadiaImageBase = "https://asset.oceans-nadia.com"

var (
	nextDataScriptPattern = regexp.MustCompile(`(?is)<script id="__NEXT_DATA__" type="application/json">(.*?)</script>`)
	trailingParenPattern  = regexp.MustCompile(`\s*[\(（].*?[\)）]\s*$`)
)

type nadiaIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type nadiaImage struct {
	Path string `json:"path"`
}

type nadiaRecipe struct {
	Title       string            `json:"title"`
	Ingredients []nadiaIngredient `json:"ingredients"`
	ImageSet    []nadiaImage      `json:"imageSet"`
}

type nextDataPayload struct {
	Props struct {
		PageProps struct {
			Data struct {
				PublishedRecipe *nadiaRecipe `json:"publishedRecipe"`
			} `json:"data"`
		} `json:"pageProps"`
	} `json:"props"`
}

// ExtractRecipeFromNextData pulls a recipe out of a __NEXT_DATA__ script
// block. Returns nil when the payload is absent or has no usable recipe.
func ExtractRecipeFromNextData(html string) *Extraction {
	m := nextDataScriptPattern.FindStringSubmatch(html)
	if m == nil {
		return nil
	}

	var payload nextDataPayload
	if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
		return nil
	}

	rec := payload.Props.PageProps.Data.PublishedRecipe
	if rec == nil || rec.Title == "" {
		return nil
	}

	var ingredients []string
	for _, ing := range rec.Ingredients {
		name := strings.TrimSpace(trailingParenPattern.ReplaceAllString(ing.Name, ""))
		if name != "" {
			ingredients = append(ingredients, name)
		}
	}
	if len(ingredients) == 0 {
		return nil
	}

	return &Extraction{
		Title:       rec.Title,
		SourceName:  "Nadia",
		ImageURL:    buildNadiaImageURL(rec.ImageSet),
		Ingredients: ingredients,
	}
}

func buildNadiaImageURL(images []nadiaImage) string {
	if len(images) == 0 || images[0].Path == "" {
		return ""
	}
	path := images[0].Path
	if strings.HasPrefix(path, "http") {
		return path
	}
	return nadiaImageBase + path
}
