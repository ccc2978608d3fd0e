package progress

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 100

// RewardForAttempts returns the XP awarded when a problem is solved for the
// first time after tries attempts, the solving attempt included.
func RewardForAttempts(tries int) int {
	switch {
	case tries <= 1:
		return 50
	case tries <= 5:
		return 30
	default:
		return 10
	}
}

// Level returns the level reached with xp total experience.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// LevelProgress returns the XP earned inside the current level.
func LevelProgress(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}
