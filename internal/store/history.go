package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/dailydrill/internal/catalog"
	"github.com/abhisek/dailydrill/internal/history"
	"github.com/abhisek/dailydrill/internal/strategy"
)

// historyRepo implements HistoryRepo.
type historyRepo struct {
	drv *entsql.Driver
}

var recordColumns = []string{
	"user_id", "question_id", "title", "topic", "difficulty", "solve_count",
	"first_solved_at", "last_updated_at", "average_time_spent", "difficulty_rating", "tags",
}

func (r *historyRepo) Save(ctx context.Context, rec *history.Record, s *history.Session) error {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	var rating any
	if rec.DifficultyRating != nil {
		rating = *rec.DifficultyRating
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin solve record save: %w", err)
	}

	query, args := builder().Insert(SolveRecordsTable.Name).
		Columns(recordColumns...).
		Values(rec.UserID, rec.QuestionID, rec.Title, rec.Topic, string(rec.Difficulty), rec.SolveCount,
			rec.FirstSolvedAt.UTC(), rec.LastUpdatedAt.UTC(), rec.AverageTimeSpent, rating, tags).
		OnConflict(entsql.ConflictColumns("user_id", "question_id"), entsql.ResolveWithNewValues()).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert solve record: %w", err)
	}

	if s != nil {
		var spent, prev any
		if s.TimeSpent != nil {
			spent = *s.TimeSpent
		}
		if s.Context.PreviousOutcome != nil {
			prev = *s.Context.PreviousOutcome
		}
		query, args := builder().Insert(SolveSessionsTable.Name).
			Columns("user_id", "question_id", "solved_at", "time_spent", "success",
				"time_of_day", "day_of_week", "session_ordinal", "previous_outcome", "recommended_by").
			Values(rec.UserID, rec.QuestionID, s.SolvedAt.UTC(), spent, s.Success,
				string(s.Context.TimeOfDay), int(s.Context.DayOfWeek), s.Context.SessionOrdinal, prev, string(s.Context.RecommendedBy)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("append solve session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit solve record save: %w", err)
	}
	return nil
}

func (r *historyRepo) Get(ctx context.Context, userID, questionID string) (*history.Record, error) {
	recs, err := r.find(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_id", questionID)))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (r *historyRepo) FindByUser(ctx context.Context, userID string) ([]*history.Record, error) {
	return r.find(ctx, entsql.EQ("user_id", userID))
}

func (r *historyRepo) DistinctSolvedQuestionIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query, args := builder().Select("question_id").
		From(entsql.Table(SolveRecordsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Distinct().
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query solved ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan solved id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solved ids: %w", err)
	}
	return ids, nil
}

// find loads records matching where and attaches their sessions.
func (r *historyRepo) find(ctx context.Context, where *entsql.Predicate) ([]*history.Record, error) {
	recs, err := r.records(ctx, where)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}
	// Sessions share the user_id and question_id columns, so the same
	// predicate selects them.
	sessions, err := r.sessions(ctx, where)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		rec.Sessions = sessions[rec.QuestionID]
	}
	return recs, nil
}

func (r *historyRepo) records(ctx context.Context, where *entsql.Predicate) ([]*history.Record, error) {
	query, args := builder().Select(recordColumns...).
		From(entsql.Table(SolveRecordsTable.Name)).
		Where(where).
		OrderBy("question_id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query solve records: %w", err)
	}
	defer rows.Close()

	recs := []*history.Record{}
	for rows.Next() {
		var (
			rec    history.Record
			diff   string
			rating sql.NullInt64
			tags   []byte
		)
		if err := rows.Scan(&rec.UserID, &rec.QuestionID, &rec.Title, &rec.Topic, &diff, &rec.SolveCount,
			&rec.FirstSolvedAt, &rec.LastUpdatedAt, &rec.AverageTimeSpent, &rating, &tags); err != nil {
			return nil, fmt.Errorf("scan solve record: %w", err)
		}
		rec.Difficulty = catalog.Difficulty(diff)
		if rating.Valid {
			v := int(rating.Int64)
			rec.DifficultyRating = &v
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &rec.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for %s: %w", rec.QuestionID, err)
			}
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solve records: %w", err)
	}
	return recs, nil
}

func (r *historyRepo) sessions(ctx context.Context, where *entsql.Predicate) (map[string][]history.Session, error) {
	query, args := builder().Select("question_id", "solved_at", "time_spent", "success",
		"time_of_day", "day_of_week", "session_ordinal", "previous_outcome", "recommended_by").
		From(entsql.Table(SolveSessionsTable.Name)).
		Where(where).
		OrderBy("solved_at", "id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query solve sessions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]history.Session)
	for rows.Next() {
		var (
			questionID string
			s          history.Session
			spent      sql.NullFloat64
			tod        string
			dow        int
			prev       sql.NullBool
			by         string
		)
		if err := rows.Scan(&questionID, &s.SolvedAt, &spent, &s.Success,
			&tod, &dow, &s.Context.SessionOrdinal, &prev, &by); err != nil {
			return nil, fmt.Errorf("scan solve session: %w", err)
		}
		if spent.Valid {
			v := spent.Float64
			s.TimeSpent = &v
		}
		if prev.Valid {
			v := prev.Bool
			s.Context.PreviousOutcome = &v
		}
		s.Context.TimeOfDay = history.TimeOfDay(tod)
		s.Context.DayOfWeek = time.Weekday(dow)
		s.Context.RecommendedBy = strategy.Name(by)
		out[questionID] = append(out[questionID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate solve sessions: %w", err)
	}
	return out, nil
}
