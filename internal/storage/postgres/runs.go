package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/reroll/internal/ev"
	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

// Run kinds stored in runs.kind.
const (
	KindSimulation  = "simulation"
	KindExpectation = "expectation"
)

// ErrRunNotFound is returned when a run lookup yields no results.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored simulation or expectation.
//
// Simulations carry Trials, Seed (when seeded), spread statistics and Buckets;
// expectations carry Exact.
type Run struct {
	ID        uuid.UUID
	Kind      string
	Dice      int
	Trials    int
	Seed      *uint64
	Mean      float64
	StdDev    float64
	StdErr    float64
	Exact     string
	Elapsed   time.Duration
	CreatedAt time.Time
	Buckets   []montecarlo.Bucket
}

// RunRepository provides run persistence operations.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// SaveSimulation stores sim and its histogram buckets in one transaction.
//
// Precondition: sim.ID is set (montecarlo.Runner.Simulate assigns one).
// Postcondition: Get(sim.ID) returns the stored run with all buckets.
func (r *RunRepository) SaveSimulation(ctx context.Context, sim montecarlo.Simulation) error {
	if sim.ID == uuid.Nil {
		return fmt.Errorf("saving simulation: missing id")
	}
	var seed *int64
	if sim.Seed != nil {
		// stored bit-for-bit; BIGINT has no unsigned form
		s := int64(*sim.Seed)
		seed = &s
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO runs (id, kind, dice, trials, seed, mean, std_dev, std_err, elapsed_ms)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sim.ID, KindSimulation, sim.Dice, sim.Trials, seed,
			sim.Summary.Mean, sim.Summary.StdDev, sim.Summary.StdErr, sim.Elapsed.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("inserting simulation run: %w", err)
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"run_buckets"},
			[]string{"run_id", "rounds", "count"},
			pgx.CopyFromSlice(len(sim.Buckets), func(i int) ([]any, error) {
				b := sim.Buckets[i]
				return []any{sim.ID, b.Rounds, int64(b.Count)}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copying run buckets: %w", err)
		}
		return nil
	})
}

// SaveExpectation stores an exact expectation under a new ID.
//
// Postcondition: Returns the new run ID or a non-nil error.
func (r *RunRepository) SaveExpectation(ctx context.Context, e ev.Expectation) (uuid.UUID, error) {
	id := uuid.New()
	exact := ""
	if e.Exact != nil {
		exact = e.Exact.RatString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO runs (id, kind, dice, mean, exact, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, KindExpectation, e.Dice, e.Value, exact, e.Elapsed.Milliseconds(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting expectation run: %w", err)
	}
	return id, nil
}

const runColumns = `id, kind, dice, COALESCE(trials, 0), seed, mean,
	COALESCE(std_dev, 0), COALESCE(std_err, 0), COALESCE(exact, ''), elapsed_ms, created_at`

func scanRun(row pgx.Row) (Run, error) {
	var (
		run       Run
		seed      *int64
		elapsedMS int64
	)
	err := row.Scan(&run.ID, &run.Kind, &run.Dice, &run.Trials, &seed, &run.Mean,
		&run.StdDev, &run.StdErr, &run.Exact, &elapsedMS, &run.CreatedAt)
	if err != nil {
		return Run{}, err
	}
	if seed != nil {
		s := uint64(*seed)
		run.Seed = &s
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return run, nil
}

// Get retrieves a run and, for simulations, its buckets in ascending order.
//
// Postcondition: Returns the Run or ErrRunNotFound.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("querying run: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT rounds, count FROM run_buckets WHERE run_id = $1 ORDER BY rounds`, id)
	if err != nil {
		return Run{}, fmt.Errorf("querying run buckets: %w", err)
	}
	buckets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (montecarlo.Bucket, error) {
		var (
			b     montecarlo.Bucket
			count int64
		)
		if err := row.Scan(&b.Rounds, &count); err != nil {
			return montecarlo.Bucket{}, err
		}
		b.Count = int(count)
		return b, nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("scanning run buckets: %w", err)
	}
	if len(buckets) > 0 {
		run.Buckets = buckets
	}
	return run, nil
}

// ListByDice returns up to limit runs for the given die count, newest first.
// Buckets are not loaded.
//
// Precondition: limit > 0.
func (r *RunRepository) ListByDice(ctx context.Context, dice, limit int) ([]Run, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+runColumns+` FROM runs WHERE dice = $1 ORDER BY created_at DESC, id LIMIT $2`,
		dice, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Run, error) {
		return scanRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}
	return runs, nil
}
