package model

const XPPerLevel = 1000

type UserStats struct {
	Level           int `json:"level"`
	TotalXP         int `json:"totalXp"`
	CompletedQuests int `json:"completedQuests"`
	// Streak is persisted but nothing updates it.
	Streak int `json:"streak"`
}

func DefaultUserStats() UserStats {
	return UserStats{Level: 1}
}

func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// Award credits a completed quest's reward and reports whether the level rose.
func (s UserStats) Award(xp int) (UserStats, bool) {
	if xp < 0 {
		xp = 0
	}
	out := s
	out.TotalXP += xp
	out.Level = LevelForXP(out.TotalXP)
	out.CompletedQuests++
	return out, out.Level > s.Level
}

// XPIntoLevel returns progress toward the next level.
func (s UserStats) XPIntoLevel() int {
	return s.TotalXP % XPPerLevel
}
