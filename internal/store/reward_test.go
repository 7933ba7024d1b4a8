package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestRewardCRUD(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	// Create
	reward, err := rs.Create("Ice Cream Trip", "Go get ice cream!", 50, true)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if reward.Title != "Ice Cream Trip" {
		t.Errorf("title = %q, want %q", reward.Title, "Ice Cream Trip")
	}
	if reward.PointCost != 50 {
		t.Errorf("point_cost = %d, want 50", reward.PointCost)
	}
	if !reward.Active {
		t.Error("expected active")
	}

	// Get by ID
	got, err := rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got == nil {
		t.Fatal("expected reward, got nil")
	}
	if got.Title != "Ice Cream Trip" {
		t.Errorf("title = %q, want %q", got.Title, "Ice Cream Trip")
	}

	// Update
	updated, err := rs.Update(reward.ID, "Movie Night", "Watch a movie", 100, true)
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.Title != "Movie Night" {
		t.Errorf("title = %q, want %q", updated.Title, "Movie Night")
	}
	if updated.PointCost != 100 {
		t.Errorf("point_cost = %d, want 100", updated.PointCost)
	}

	// Delete
	if err := rs.Delete(reward.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	got, err = rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get deleted reward: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestRewardNotFound(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	got, err := rs.GetByID(uuid.NewString())
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent reward")
	}
}

func TestRewardListOrdering(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	rs.Create("Zebra Reward", "", 10, true)
	rs.Create("Alpha Reward", "", 20, true)
	rs.Create("Beta Inactive", "", 5, false)

	rewards, err := rs.List()
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 3 {
		t.Fatalf("expected 3 rewards, got %d", len(rewards))
	}

	// Active first (alpha, zebra), then inactive (beta)
	if rewards[0].Title != "Alpha Reward" {
		t.Errorf("rewards[0].Title = %q, want %q", rewards[0].Title, "Alpha Reward")
	}
	if rewards[1].Title != "Zebra Reward" {
		t.Errorf("rewards[1].Title = %q, want %q", rewards[1].Title, "Zebra Reward")
	}
	if rewards[2].Title != "Beta Inactive" {
		t.Errorf("rewards[2].Title = %q, want %q", rewards[2].Title, "Beta Inactive")
	}

	active, err := rs.ListActive()
	if err != nil {
		t.Fatalf("list active rewards: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active rewards, got %d", len(active))
	}
}

func TestRewardGetCostsByIDs(t *testing.T) {
	rs := NewRewardStore(setupTestDB(t))

	bike, _ := rs.Create("Bike ride", "", 25, true)
	movie, _ := rs.Create("Movie night", "", 100, true)

	costs, err := rs.GetCostsByIDs([]string{bike.ID, movie.ID, uuid.NewString()})
	if err != nil {
		t.Fatalf("get costs: %v", err)
	}
	if len(costs) != 2 {
		t.Fatalf("got %d costs, want 2 (unknown id absent)", len(costs))
	}
	if costs[bike.ID] != 25 || costs[movie.ID] != 100 {
		t.Errorf("costs = %v", costs)
	}

	empty, err := rs.GetCostsByIDs(nil)
	if err != nil {
		t.Fatalf("get costs (empty): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("costs for no ids = %v, want empty", empty)
	}
}
