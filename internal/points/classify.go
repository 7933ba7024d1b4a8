package points

import "strings"

// Category buckets a positive ledger entry by the activity that earned it.
type Category string

const (
	CategoryDaily            Category = "daily"
	CategoryChecklists       Category = "checklists"
	CategoryGames            Category = "games"
	CategoryTargets          Category = "targets"
	CategoryWishlist         Category = "wishlist"
	CategoryRewardEncourage  Category = "rewardEncourage"
	CategoryRewardRedemption Category = "rewardRedemption"
	CategoryOther            Category = "other"
)

// Game name tokens matched against the collapsed reason form. Matching on
// the collapsed form tolerates "Math Sprint", "math_sprint" and "mathsprint"
// alike, which all occur in historical ledger data.
var gameTokens = []string{
	"starcatcher",
	"mathsprint",
	"wordbuilder",
	"memorymatch",
	"jumpplatformer",
	"jumpinggame",
	"jumpgame",
	"quizgame",
	"trivia",
	"game",
}

// Story/activity titles that predate structured reasons. Entries written by
// early versions carried the bare activity title, all of which were targets.
var knownTargetTitles = []string{
	"morning routine",
	"bedtime story",
	"reading time",
	"homework helper",
	"tidy-up challenge",
}

// Classify routes a ledger reason to its earnings bucket. The second return
// is false for debug/test entries, which are excluded from the breakdown
// entirely rather than bucketed. First match wins, in a fixed rule order.
func Classify(reason string) (Category, bool) {
	r := strings.ToLower(strings.TrimSpace(reason))
	if IsDebugReason(r) {
		return "", false
	}

	s := collapse(r)
	for _, token := range gameTokens {
		if strings.Contains(s, token) {
			return CategoryGames, true
		}
	}

	switch {
	case strings.Contains(r, "daily activity"):
		return CategoryDaily, true
	case strings.Contains(r, "checklist"):
		return CategoryChecklists, true
	case strings.Contains(r, "target"):
		return CategoryTargets, true
	case strings.Contains(r, "wishlist"), strings.Contains(r, "wish"):
		return CategoryWishlist, true
	}

	for _, title := range knownTargetTitles {
		if r == title {
			return CategoryTargets, true
		}
	}

	switch {
	case strings.Contains(r, "encourage reward"),
		strings.Contains(r, "encouragement reward"),
		strings.HasPrefix(r, "encouragement:"):
		return CategoryRewardEncourage, true
	case strings.Contains(r, "redemption reward"),
		strings.HasPrefix(r, "reward redemption"),
		strings.HasPrefix(r, "redeem reward"):
		return CategoryRewardRedemption, true
	}

	return CategoryOther, true
}

// IsDebugReason reports whether a reason marks a debug/test entry. The input
// is expected to already be lower-cased and trimmed.
func IsDebugReason(r string) bool {
	return strings.Contains(r, "rpc debug award") || strings.HasPrefix(r, "debug")
}

// collapse strips whitespace, punctuation, and underscores so token matching
// sees a single normalized form.
func collapse(r string) string {
	var b strings.Builder
	b.Grow(len(r))
	for _, c := range r {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
