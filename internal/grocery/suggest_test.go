package grocery

import "testing"

func TestSuggestSingleWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"coffee", "Beverages"},
		{"chips", "Snacks"},
		{"shampoo", "Personal Care"},
		{"apples", "Produce"},
		{"tomatoes", "Produce"},
		{"berries", "Produce"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestLongestPhraseWins(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"peanut butter", "Pantry"},
		{"ice cream", "Frozen"},
		{"dish soap refill", "Household"},
		{"hot dogs", "Meat & Seafood"},
		{"frozen pizza", "Frozen"},
		{"whole wheat bread", "Bakery"},
		{"organic baby spinach", "Produce"},
		{"sparkling water bottles", "Beverages"},
		{"canned black beans", "Pantry"},
		{"greek yogurt cups", "Dairy"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCaseAndPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "Dairy"},
		{"  Paper Towels ", "Household"},
		{"Eggs (dozen)", "Dairy"},
		{"coffee, decaf", "Beverages"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "widget", "gift card"} {
		if got := Suggest(input); got != Fallback {
			t.Errorf("Suggest(%q) = %q, want %q", input, got, Fallback)
		}
	}
}

func TestSuggestPluralStems(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cookie", "Snacks"},
		{"Cookies", "Snacks"},
		{"candy", "Snacks"},
		{"candies", "Snacks"},
		{"Strawberries", "Produce"},
		{"blueberry", "Produce"},
		{"batteries", "Household"},
		{"honey", "Pantry"},
		{"turkey", "Meat & Seafood"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestSubstringMatch(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Watermelon", "Produce"},
		{"Pineapple", "Produce"},
		{"Blueberries", "Produce"},
		{"blackberries", "Produce"},
		{"chickenwings", "Meat & Seafood"},
		{"cheeseburger buns", "Bakery"},
		{"oatmilk", "Dairy"},
	}
	for _, tt := range tests {
		got := Suggest(tt.input)
		if got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
