package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher answers from canned JSON bodies and records call order.
type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(_ context.Context, location string) (Response, error) {
	f.calls = append(f.calls, location)
	if err, ok := f.errs[location]; ok {
		return nil, err
	}
	body, ok := f.bodies[location]
	if !ok {
		return nil, errors.New("no canned body")
	}
	return DecodeResponse(strings.NewReader(body))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSpec = NewFieldSpec([]KeyValue{
	{Key: "main", Value: "temp"},
	{Key: "other", Value: "cod"},
})

const notFoundBody = `{"cod": "404", "message": "city not found"}`

func okBody(temp string) string {
	return `{"main": {"temp": ` + temp + `}, "cod": 200}`
}

func TestRunPreservesOrderAndSkipsNotFound(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"A": okBody("1.5"),
		"B": notFoundBody,
		"C": okBody("3.5"),
	}}
	svc := NewService(fetcher, testSpec, PolicyContinue, discardLogger())

	report, err := svc.Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, fetcher.calls)
	require.Equal(t, 2, report.Table.Len())

	rows := report.Table.Rows()
	city, _ := rows[0].Get("city")
	assert.Equal(t, "A", city)
	city, _ = rows[1].Get("city")
	assert.Equal(t, "C", city)

	require.Len(t, report.Results, 3)
	assert.Equal(t, StatusOK, report.Results[0].Status)
	assert.Equal(t, StatusNotFound, report.Results[1].Status)
	assert.NoError(t, report.Results[1].Err)
	assert.Equal(t, StatusOK, report.Results[2].Status)
	assert.Equal(t, 1, report.Count(StatusNotFound))
	assert.NotEqual(t, report.RunID.String(), "")
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRunAllNotFound(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"X": notFoundBody}}
	svc := NewService(fetcher, testSpec, PolicyAbort, discardLogger())

	report, err := svc.Run(context.Background(), []string{"X"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Table.Len())
	assert.Empty(t, report.Table.Columns())
}

func TestRunContinuePolicyIsolatesFailures(t *testing.T) {
	transportErr := errors.New("connection reset")
	fetcher := &stubFetcher{
		bodies: map[string]string{
			"A": okBody("1"),
			"C": `{"cod": 200}`,
			"D": okBody("4"),
		},
		errs: map[string]error{"B": transportErr},
	}
	svc := NewService(fetcher, testSpec, PolicyContinue, discardLogger())

	report, err := svc.Run(context.Background(), []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Table.Len())
	assert.Equal(t, 2, report.Count(StatusFailed))
	assert.ErrorIs(t, report.Results[1].Err, transportErr)
	assert.ErrorIs(t, report.Results[2].Err, ErrMissingGroup)
}

func TestRunAbortPolicyStopsBatch(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"A": okBody("1"),
		"B": `{"main": {}, "cod": 200}`,
		"C": okBody("3"),
	}}
	svc := NewService(fetcher, testSpec, PolicyAbort, discardLogger())

	report, err := svc.Run(context.Background(), []string{"A", "B", "C"})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, []string{"A", "B"}, fetcher.calls)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"A": okBody("1")}}
	svc := NewService(fetcher, testSpec, PolicyContinue, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, []string{"A"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fetcher.calls)
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyContinue, p)

	p, err = ParseFailurePolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)
}
