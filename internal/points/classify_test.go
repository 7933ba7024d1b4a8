package points

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		reason string
		want   Category
	}{
		{"Daily activity bonus", CategoryDaily},
		{"Completed daily activity", CategoryDaily},
		{"Checklist done", CategoryChecklists},
		{"Morning checklist complete", CategoryChecklists},
		{"Target: clean room", CategoryTargets},
		{"Completed target", CategoryTargets},
		{"Wishlist item earned", CategoryWishlist},
		{"Granted a wish", CategoryWishlist},
		{"Star Catcher level 2", CategoryGames},
		{"math_sprint round", CategoryGames},
		{"Word Builder win", CategoryGames},
		{"memory match pairs", CategoryGames},
		{"Quiz Game perfect score", CategoryGames},
		{"trivia night", CategoryGames},
		{"played a game", CategoryGames},
		{"Bedtime Story", CategoryTargets},
		{"morning routine", CategoryTargets},
		{"Encouragement reward from mom", CategoryRewardEncourage},
		{"encouragement: great effort", CategoryRewardEncourage},
		{"Redemption reward adjustment", CategoryRewardRedemption},
		{"Reward redemption: toy", CategoryRewardRedemption},
		{"redeem reward: movie night", CategoryRewardRedemption},
		{"helped a neighbor", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		got, counted := Classify(tt.reason)
		if !counted {
			t.Errorf("Classify(%q) excluded, want %q", tt.reason, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.reason, got, tt.want)
		}
	}
}

func TestClassifyExcludesDebugEntries(t *testing.T) {
	excluded := []string{
		"RPC debug award test",
		"debug: manual poke",
		"Debug award",
		"rpc debug award",
	}
	for _, reason := range excluded {
		if _, counted := Classify(reason); counted {
			t.Errorf("Classify(%q) counted, want excluded", reason)
		}
	}

	// "debug" mid-string without the rpc marker is not a debug entry.
	if _, counted := Classify("fixed the debugger chore"); !counted {
		t.Error("non-marker reason excluded")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Game detection runs before the daily/checklist rules.
	got, _ := Classify("daily activity: math sprint")
	if got != CategoryGames {
		t.Errorf("got %q, want %q", got, CategoryGames)
	}
}

func TestMakeIdemKey(t *testing.T) {
	if got := MakeIdemKey("Star Catcher", "Level 3"); got != "star-catcher:level-3" {
		t.Errorf("MakeIdemKey = %q", got)
	}
	if MakeIdemKey(" star  catcher ", "level 3") != MakeIdemKey("Star Catcher", "Level 3") {
		t.Error("normalization is not stable")
	}

	day := time.Date(2025, 6, 14, 23, 50, 0, 0, time.UTC)
	if got := MakeDailyIdemKey("quiz game", "round 1", day); got != "quiz-game:round-1:2025-06-14" {
		t.Errorf("MakeDailyIdemKey = %q", got)
	}

	// Same calendar day, different wall-clock time: same key.
	later := day.Add(5 * time.Minute)
	if MakeDailyIdemKey("quiz game", "round 1", day) != MakeDailyIdemKey("quiz game", "round 1", later) {
		t.Error("same-day keys differ")
	}
}
