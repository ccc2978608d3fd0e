// Package progress implements the experience, level and streak ledger.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/drill/internal/store"
)

const dateLayout = "2006-01-02"

// State is the user's progress with the level derived from TotalXP.
type State struct {
	TotalXP    int
	Level      int
	Streak     int
	LastActive string
}

// Award describes the effect of one ApplyXP call.
type Award struct {
	XP        int
	TotalXP   int
	Level     int
	LeveledUp bool
	Streak    int
}

// Ledger reads and updates the persisted progress singleton.
type Ledger struct {
	repo store.ProgressRepo
}

// NewLedger creates a Ledger over repo.
func NewLedger(repo store.ProgressRepo) *Ledger {
	return &Ledger{repo: repo}
}

// State returns the current progress as seen at now. A streak whose last
// active day is older than yesterday reads as 0.
func (l *Ledger) State(ctx context.Context, now time.Time) (State, error) {
	st, err := l.repo.Load(ctx)
	if err != nil {
		return State{}, err
	}
	return State{
		TotalXP:    st.TotalXP,
		Level:      Level(st.TotalXP),
		Streak:     effectiveStreak(st, now),
		LastActive: st.LastActiveDate,
	}, nil
}

// ApplyXP adds amount to the total, recomputes the level and extends the
// daily streak.
func (l *Ledger) ApplyXP(ctx context.Context, amount int, now time.Time) (Award, error) {
	if amount < 0 {
		return Award{}, fmt.Errorf("negative xp amount %d", amount)
	}

	st, err := l.repo.Load(ctx)
	if err != nil {
		return Award{}, err
	}

	before := Level(st.TotalXP)
	st.TotalXP += amount
	st.StreakDays = nextStreak(st, now)
	st.LastActiveDate = now.Format(dateLayout)

	if err := l.repo.Save(ctx, st); err != nil {
		return Award{}, err
	}

	after := Level(st.TotalXP)
	return Award{
		XP:        amount,
		TotalXP:   st.TotalXP,
		Level:     after,
		LeveledUp: after > before,
		Streak:    st.StreakDays,
	}, nil
}

// nextStreak continues the streak when the last active day was yesterday,
// keeps it when it was today, and restarts it otherwise.
func nextStreak(st store.ProgressState, now time.Time) int {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	switch st.LastActiveDate {
	case today:
		if st.StreakDays < 1 {
			return 1
		}
		return st.StreakDays
	case yesterday:
		return st.StreakDays + 1
	default:
		return 1
	}
}

func effectiveStreak(st store.ProgressState, now time.Time) int {
	switch st.LastActiveDate {
	case now.Format(dateLayout), now.AddDate(0, 0, -1).Format(dateLayout):
		return st.StreakDays
	default:
		return 0
	}
}

// Badge renders the one-line progress summary.
func Badge(s State) string {
	return fmt.Sprintf("🏆 Level %d | ✨ %d XP | 🔥 Streak: %d", s.Level, s.TotalXP, s.Streak)
}

// RewardMessage renders the lines shown after a first solve.
func RewardMessage(a Award) string {
	msg := fmt.Sprintf("\n⭐ +%d XP EARNED! (Total: %d)", a.XP, a.TotalXP)
	if a.LeveledUp {
		msg += fmt.Sprintf("\n🆙 LEVEL UP! You are now Level %d!", a.Level)
	}
	return msg
}
