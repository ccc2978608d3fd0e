package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const userStatsTable = "user_stats"

type progressRepo struct {
	db *sql.DB
	sb *entsql.DialectBuilder
}

func (r *progressRepo) Load(ctx context.Context) (ProgressState, error) {
	query, args := r.sb.Select("total_xp", "streak_days", "last_active_date").
		From(r.sb.Table(userStatsTable)).
		Where(entsql.EQ("id", 1)).
		Query()

	var st ProgressState
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&st.TotalXP, &st.StreakDays, &st.LastActiveDate)
	if err != nil {
		return st, fmt.Errorf("load progress: %w", err)
	}
	return st, nil
}

func (r *progressRepo) Save(ctx context.Context, st ProgressState) error {
	query, args := r.sb.Update(userStatsTable).
		Set("total_xp", st.TotalXP).
		Set("streak_days", st.StreakDays).
		Set("last_active_date", st.LastActiveDate).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
