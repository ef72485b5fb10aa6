package analysis

import (
	"regexp"
	"strings"
)

var carbKeywords = []string{
	"rice", "pasta", "noodles", "bread", "naan", "tortilla", "potato", "fries",
	"beans", "lentils", "oatmeal", "cereal", "fruit", "banana", "apple",
	"quinoa", "couscous", "wrap", "bun", "roll", "crackers", "chips",
}

var carbKeywordPattern = regexp.MustCompile(`\b(` + strings.Join(carbKeywords, "|") + `)\b`)

// ExtractCarbSource returns the first well-known carbohydrate food named in
// the description, or "" when none is recognised.
func ExtractCarbSource(description string) string {
	return carbKeywordPattern.FindString(strings.ToLower(description))
}
