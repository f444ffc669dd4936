package model

import "testing"

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{999, 1},
		{1000, 2},
		{2500, 3},
		{-10, 1},
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestUserStatsAward(t *testing.T) {
	stats := DefaultUserStats()
	next, leveled := stats.Award(600)
	if leveled || next.TotalXP != 600 || next.Level != 1 || next.CompletedQuests != 1 {
		t.Fatalf("unexpected stats after first award: %+v leveled=%v", next, leveled)
	}
	next, leveled = next.Award(500)
	if !leveled || next.TotalXP != 1100 || next.Level != 2 || next.CompletedQuests != 2 {
		t.Fatalf("unexpected stats after second award: %+v leveled=%v", next, leveled)
	}
	if next.XPIntoLevel() != 100 {
		t.Fatalf("expected 100 xp into level, got %d", next.XPIntoLevel())
	}
	if next.Streak != 0 {
		t.Fatalf("expected streak untouched, got %d", next.Streak)
	}
}
