package runlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/nearbite/nearbite/internal/model"
)

// Pool is the slice of pgxpool.Pool the run log uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store on Postgres.
type PostgresStore struct {
	pool Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL,
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// NewPostgres connects, pings, and migrates the run log schema.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: parse connection string")
	}
	poolCfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "runlog: ping")
	}

	s := &PostgresStore{pool: pool}
	if _, err := pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "runlog: migrate")
	}
	return s, nil
}

// NewPostgresFromPool wraps an existing pool without migrating. Used in tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, query, sessionID string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Query:     query,
		SessionID: sessionID,
		State:     model.StateReceived,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, query, session_id, state, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Query, run.SessionID, string(run.State), run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: insert run")
	}
	return run, nil
}

func (s *PostgresStore) UpdateState(ctx context.Context, runID string, state model.RunState) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET state = $1, updated_at = $2 WHERE id = $3`,
		string(state), time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "runlog: update state")
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, state model.RunState, result *model.RunResult) error {
	var resultJSON []byte
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return eris.Wrap(err, "runlog: marshal result")
		}
		resultJSON = data
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET state = $1, result = $2, updated_at = $3 WHERE id = $4`,
		string(state), resultJSON, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "runlog: finish run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, query, session_id, state, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)
	run, err := scanPostgresRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "runlog: get run")
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, query, session_id, state, result, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "runlog: iterate runs")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var (
		run        model.Run
		state      string
		resultJSON []byte
	)
	err := row.Scan(&run.ID, &run.Query, &run.SessionID, &state, &resultJSON, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.State = model.RunState(state)

	if len(resultJSON) > 0 {
		var result model.RunResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, eris.Wrap(err, "runlog: unmarshal result")
		}
		run.Result = &result
	}
	return &run, nil
}
