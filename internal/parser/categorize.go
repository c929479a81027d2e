package parser

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// CategoryOther is returned when no keyword matches.
const CategoryOther = "Other"

// categoryRule pairs a spending category with its keywords. Table order is
// significant: categories overlap, and the earliest declared one wins.
type categoryRule struct {
	Name     string
	Keywords []string
}

var categoryTable = []categoryRule{
	{"Dining", []string{
		"restaurant", "cafe", "food", "starbucks", "mc donald", "mcdonald",
		"kfc", "domino", "chipotle", "panera", "subway", "wendys", "taco bell",
		"swiggy", "zomato", "uber eats", "dunzo", "box8", "faasos",
		"pizza", "burger", "dining", "innovative food", "kitchen", "bistro",
		"eatery", "coffee", "bar",
	}},
	{"Groceries", []string{
		"grocery", "supermarket", "market", "walmart", "target", "costco",
		"whole foods", "trader joe", "kroger", "safeway",
		"zepto", "blinkit", "blink commerce", "bigbasket", "grofers", "instamart",
		"dmart", "reliance", "more", "big bazaar", "jiomart", "fresh", "vegetables",
	}},
	{"Transportation", []string{
		"uber", "lyft", "gas", "fuel", "shell", "exxon", "chevron", "bp",
		"ola", "rapido", "meru", "petrol", "hp petrol", "bharat petroleum",
		"indian oil", "nayara", "auto service", "taxi", "parking", "airline",
		"delta", "metro", "ato borivali", "satyashanti auto",
	}},
	{"Shopping", []string{
		"amazon", "best buy", "apple store", "target", "macys", "nordstrom",
		"flipkart", "myntra", "ajio", "meesho", "shoppers stop", "lifestyle",
		"store", "shop", "mall", "retail", "snapdeal",
	}},
	{"Entertainment", []string{
		"netflix", "spotify", "prime", "hulu", "disney", "hotstar",
		"youtube", "apple music", "movie", "cinema", "pvr", "inox",
		"gaming", "playstation", "xbox", "theater", "zee5", "sony liv",
	}},
	{"Utilities", []string{
		"electric", "electricity", "water", "internet", "phone", "mobile",
		"verizon", "at&t", "tmobile", "airtel", "jio", "vodafone", "bsnl",
		"bill payment", "recharge", "broadband", "wifi",
	}},
	{"Travel", []string{
		"airline", "flight", "hotel", "booking", "delta", "united", "hilton",
		"makemytrip", "goibibo", "yatra", "cleartrip", "oyo", "airbnb",
		"irctc", "railway", "marriott", "rental", "resort", "lodge",
	}},
	{"Bills", []string{
		"paytm", "phonepe", "googlepay", "gpay", "bhim", "payment gateway",
		"wallet", "digital payment", "cc payment", "payzapp",
	}},
	{"Fees", []string{
		"late fee", "finance charge", "annual fee", "service charge",
		"gst", "igst", "cgst", "sgst", "surcharge", "penalty",
		"interest", "processing fee", "waiver", "finance charges", "atm",
	}},
}

// Categories lists the closed category set in precedence order.
func Categories() []string {
	out := make([]string, 0, len(categoryTable)+1)
	for _, c := range categoryTable {
		out = append(out, c.Name)
	}
	return append(out, CategoryOther)
}

// keywordIndex is a single-pass matcher over a prioritized keyword table.
// owner[i] is the priority of the entry that declared keyword i.
type keywordIndex struct {
	mu      sync.Mutex // Match keeps per-call marks inside the matcher
	matcher *ahocorasick.Matcher
	owner   []int
}

// newKeywordIndex builds the matcher. A keyword declared by several entries
// belongs to the first one.
func newKeywordIndex(groups [][]string) *keywordIndex {
	seen := make(map[string]bool)
	var patterns [][]byte
	var owner []int
	for prio, keywords := range groups {
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			patterns = append(patterns, []byte(kw))
			owner = append(owner, prio)
		}
	}
	return &keywordIndex{matcher: ahocorasick.NewMatcher(patterns), owner: owner}
}

// best returns the lowest priority with a keyword hit in text, or -1.
// text must already be lower-cased.
func (k *keywordIndex) best(text string) int {
	k.mu.Lock()
	hits := k.matcher.Match([]byte(text))
	k.mu.Unlock()

	best := -1
	for _, hit := range hits {
		if p := k.owner[hit]; best == -1 || p < best {
			best = p
		}
	}
	return best
}

var categoryIndex = func() *keywordIndex {
	groups := make([][]string, len(categoryTable))
	for i, c := range categoryTable {
		groups[i] = c.Keywords
	}
	return newKeywordIndex(groups)
}()

// Categorize maps a transaction description to a spending category.
func Categorize(description string) string {
	if i := categoryIndex.best(strings.ToLower(description)); i >= 0 {
		return categoryTable[i].Name
	}
	return CategoryOther
}
