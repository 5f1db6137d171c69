// Package grocery suggests a store aisle category for an item name.
package grocery

import (
	"slices"
	"strings"
)

// Fallback is returned when no term matches.
const Fallback = "Other"

// Terms may span several words. Within a rule, order does not matter:
// longer phrases always win over shorter ones.
var rules = []struct {
	category string
	terms    []string
}{
	{"Produce", []string{
		"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato", "potato",
		"sweet potato", "onion", "green onion", "garlic", "lettuce", "spinach", "kale",
		"broccoli", "carrot", "celery", "cucumber", "pepper", "bell pepper", "mushroom",
		"grape", "berry", "strawberry", "blueberry", "melon", "watermelon", "pineapple", "pear", "peach", "mango", "cilantro", "basil", "ginger",
	}},
	{"Dairy", []string{
		"milk", "egg", "butter", "cheese", "yogurt", "cream", "sour cream",
		"cream cheese", "half and half",
	}},
	{"Meat & Seafood", []string{
		"chicken", "beef", "ground beef", "pork", "turkey", "bacon", "sausage", "ham",
		"steak", "salmon", "shrimp", "tuna", "fish", "hot dog", "deli meat",
	}},
	{"Bakery", []string{
		"bread", "bagel", "tortilla", "roll", "bun", "muffin", "croissant", "sourdough",
	}},
	{"Pantry", []string{
		"rice", "pasta", "spaghetti", "noodle", "flour", "sugar", "salt", "oil",
		"olive oil", "vinegar", "soy sauce", "ketchup", "mustard", "honey",
		"peanut butter", "jam", "cereal", "oatmeal", "canned", "bean", "lentil",
		"soup", "broth", "sauce",
	}},
	{"Frozen", []string{"frozen", "ice cream", "popsicle"}},
	{"Beverages", []string{
		"water", "juice", "coffee", "tea", "soda", "beer", "wine", "lemonade",
	}},
	{"Snacks", []string{
		"chip", "cracker", "cookie", "popcorn", "pretzel", "candy", "chocolate", "trail mix",
	}},
	{"Household", []string{
		"paper towel", "toilet paper", "trash bag", "dish soap", "detergent",
		"sponge", "foil", "battery", "light bulb", "bleach",
	}},
	{"Personal Care", []string{
		"shampoo", "conditioner", "soap", "body wash", "toothpaste", "toothbrush",
		"deodorant", "lotion", "sunscreen", "razor", "tissue",
	}},
}

type entry struct {
	term     string
	category string
}

var (
	index        = map[string]string{}
	maxTermWords int

	// byLength holds every term, longest first, for the substring pass.
	byLength []entry
)

func init() {
	for _, r := range rules {
		for _, term := range r.terms {
			words := normalize(term)
			key := strings.Join(words, " ")
			if _, dup := index[key]; dup {
				continue
			}
			index[key] = r.category
			byLength = append(byLength, entry{term: key, category: r.category})
			maxTermWords = max(maxTermWords, len(words))
		}
	}
	slices.SortStableFunc(byLength, func(a, b entry) int {
		return len(b.term) - len(a.term)
	})
}

// Suggest returns the category for an item name, or Fallback. Matching is
// case-insensitive and ignores plurals. Whole phrases are tried first,
// longest then leftmost; failing that, the longest term contained anywhere
// in the name wins, so "blackberries" still finds "berry".
func Suggest(name string) string {
	words := normalize(name)
	for n := min(maxTermWords, len(words)); n > 0; n-- {
		for i := 0; i+n <= len(words); i++ {
			if category, ok := index[strings.Join(words[i:i+n], " ")]; ok {
				return category
			}
		}
	}

	joined := strings.Join(words, " ")
	for _, e := range byLength {
		if strings.Contains(joined, e.term) {
			return e.category
		}
	}
	return Fallback
}

func normalize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	words := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?()\"'")
		if f != "" {
			words = append(words, singular(f))
		}
	}
	return words
}

// singular strips common English plural endings. Terms are normalized the
// same way, so the result need not be a real word.
func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		// "cookies" and "berries" both become "-ie"; see the y rule below.
		return w[:len(w)-1]
	case len(w) > 4 && strings.HasSuffix(w, "oes"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	case len(w) > 2 && strings.HasSuffix(w, "y") && !strings.ContainsRune("aeiou", rune(w[len(w)-2])):
		// "berry" folds to "berrie" to meet its plural.
		return w[:len(w)-1] + "ie"
	}
	return w
}
