package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
)

// SQLiteStore reads the reference dataset from a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the reference database read-only.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrOpen, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %w", ErrOpen, path, err)
	}
	return &SQLiteStore{db: db}, nil
}

const snapshotQuery = `
SELECT player_id, player_name, season, playing_pct,
       main_position, position_group,
       transfer_age, market_value, from_team_market_value, to_team_market_value,
       played_before_pct, scorer_group, clean_sheets_group,
       from_area, to_area, from_level, to_level, team_mv_relation
FROM transfers`

// Snapshot loads every transfer row. NULL numeric columns map to NaN
// and NULL text columns to "", so the similarity engine's completeness
// check can drop them per query.
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]similarity.Record, error) {
	rows, err := s.db.QueryContext(ctx, snapshotQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: transfers: %w", ErrQuery, err)
	}
	defer rows.Close()

	var out []similarity.Record
	for rows.Next() {
		var (
			r                        similarity.Record
			season                   sql.NullInt64
			playingPct, age, mv      sql.NullFloat64
			fromTeamMV, toTeamMV     sql.NullFloat64
			playedPct, fromLv, toLv  sql.NullFloat64
			mvRel                    sql.NullFloat64
			playerID, playerName     sql.NullString
			mainPos, posGroup        sql.NullString
			scorer, cleanSheets      sql.NullString
			fromArea, toArea         sql.NullString
		)
		if err := rows.Scan(
			&playerID, &playerName, &season, &playingPct,
			&mainPos, &posGroup,
			&age, &mv, &fromTeamMV, &toTeamMV,
			&playedPct, &scorer, &cleanSheets,
			&fromArea, &toArea, &fromLv, &toLv, &mvRel,
		); err != nil {
			return nil, fmt.Errorf("%w: scan transfers: %w", ErrQuery, err)
		}
		r.PlayerID = playerID.String
		r.PlayerName = playerName.String
		r.Season = int(season.Int64)
		r.PlayingPct = nullFloat(playingPct)
		r.MainPosition = mainPos.String
		r.PositionGroup = posGroup.String
		r.TransferAge = nullFloat(age)
		r.MarketValue = nullFloat(mv)
		r.FromTeamValue = nullFloat(fromTeamMV)
		r.ToTeamValue = nullFloat(toTeamMV)
		r.PlayedBeforePct = nullFloat(playedPct)
		r.ScorerGroup = scorer.String
		r.CleanSheetsGroup = cleanSheets.String
		r.FromArea = fromArea.String
		r.ToArea = toArea.String
		r.FromLevel = nullFloat(fromLv)
		r.ToLevel = nullFloat(toLv)
		r.TeamValueRel = nullFloat(mvRel)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: transfers: %w", ErrQuery, err)
	}
	return out, nil
}

// MainPositionsByGroup derives the group map from the loaded snapshot.
func (s *SQLiteStore) MainPositionsByGroup(ctx context.Context) (map[string][]string, error) {
	records, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return groupPositions(records), nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close reference db: %w", err)
	}
	return nil
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
