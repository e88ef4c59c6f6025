package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// FailurePolicy decides what a batch does when one location fails with a
// transport or response-shape error. Not-found locations never fail a batch.
type FailurePolicy string

const (
	// PolicyContinue records the failure and moves on to the next location.
	PolicyContinue FailurePolicy = "continue"
	// PolicyAbort stops at the first failure and returns no table.
	PolicyAbort FailurePolicy = "abort"
)

// ParseFailurePolicy parses "continue" or "abort". Empty means continue.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyContinue:
		return PolicyContinue, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", s)
	}
}

// Status is the outcome for one location.
type Status string

const (
	// StatusOK means the location produced a row.
	StatusOK Status = "ok"
	// StatusNotFound means the API answered cod "404"; no row, no error.
	StatusNotFound Status = "not_found"
	// StatusFailed means the fetch or flatten failed; Err says why.
	StatusFailed Status = "failed"
)

// LocationResult is the per-location outcome of a batch.
type LocationResult struct {
	Location string
	Status   Status
	Record   Record
	Err      error
}

// Report is the result of one batch run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Table      Table
	Results    []LocationResult
}

// Count returns how many locations ended with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Service fetches and flattens current weather for a list of locations.
type Service struct {
	fetcher Fetcher
	spec    FieldSpec
	policy  FailurePolicy
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(fetcher Fetcher, spec FieldSpec, policy FailurePolicy, logger *slog.Logger) *Service {
	if policy == "" {
		policy = PolicyContinue
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		spec:    spec,
		policy:  policy,
		logger:  logger,
	}
}

// Spec returns the field specification the service flattens with.
func (s *Service) Spec() FieldSpec {
	return s.spec
}

// Policy returns the configured failure policy.
func (s *Service) Policy() FailurePolicy {
	return s.policy
}

// Run processes locations one at a time, in order. Each resolved location
// adds one row to the report's table; not-found locations are logged and
// skipped. Under PolicyAbort the first failure ends the run with an error
// and no report.
func (s *Service) Run(ctx context.Context, locations []string) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
		Results:   make([]LocationResult, 0, len(locations)),
	}

	l := s.logger.With(slog.String("run_id", report.RunID.String()))
	l.InfoContext(ctx, "weather batch started",
		slog.Int("locations", len(locations)),
		slog.String("provider", s.fetcher.Name()),
		slog.String("policy", string(s.policy)))

	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := s.fetchOne(ctx, loc)
		report.Results = append(report.Results, res)

		switch res.Status {
		case StatusOK:
			report.Table.Append(res.Record)
		case StatusNotFound:
			l.InfoContext(ctx, "city not found", slog.String("city", loc))
		case StatusFailed:
			if s.policy == PolicyAbort {
				l.ErrorContext(ctx, "weather batch aborted", slog.String("city", loc), slog.Any("error", res.Err))
				return nil, fmt.Errorf("weather: %s: %w", loc, res.Err)
			}
			l.WarnContext(ctx, "skipping location", slog.String("city", loc), slog.Any("error", res.Err))
		}
	}

	report.FinishedAt = time.Now().UTC()
	l.InfoContext(ctx, "weather batch completed",
		slog.Int("rows", report.Table.Len()),
		slog.Int("not_found", report.Count(StatusNotFound)),
		slog.Int("failed", report.Count(StatusFailed)),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

func (s *Service) fetchOne(ctx context.Context, loc string) LocationResult {
	resp, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		return LocationResult{Location: loc, Status: StatusFailed, Err: err}
	}
	if resp.NotFound() {
		return LocationResult{Location: loc, Status: StatusNotFound}
	}

	record, err := Flatten(s.spec, resp, loc)
	if err != nil {
		return LocationResult{Location: loc, Status: StatusFailed, Err: err}
	}
	return LocationResult{Location: loc, Status: StatusOK, Record: record}
}
