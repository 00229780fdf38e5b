package scheduler

import (
	"context"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRunner struct {
	calls atomic.Int32
	run   func(ctx context.Context) (domain.AccrualReport, error)
}

func (f *fakeRunner) Run(ctx context.Context) (domain.AccrualReport, error) {
	f.calls.Add(1)
	return f.run(ctx)
}

func reportFor(day domain.Date, credited, failed int) domain.AccrualReport {
	return domain.AccrualReport{Date: day, Credited: credited, Failed: failed, StartedAt: time.Now(), FinishedAt: time.Now()}
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New("every day at noon", time.UTC, &fakeRunner{})
	assert.Error(t, err)
}

func TestRunNow_RecordsLastReport(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context) (domain.AccrualReport, error) {
		return reportFor("2026-03-14", 4, 0), nil
	}}
	s, err := New("0 0 * * *", time.UTC, runner)
	require.NoError(t, err)

	last, err := s.LastReport()
	assert.NoError(t, err)
	assert.Nil(t, last)

	_, err = s.RunNow(context.Background())
	require.NoError(t, err)

	last, err = s.LastReport()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 4, last.Credited)
}

func TestRunNow_KeepsPartialFailure(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context) (domain.AccrualReport, error) {
		return reportFor("2026-03-14", 3, 1), domain.ErrPartialBatchFailure
	}}
	s, err := New("0 0 * * *", time.UTC, runner)
	require.NoError(t, err)

	_, err = s.RunNow(context.Background())
	require.ErrorIs(t, err, domain.ErrPartialBatchFailure)

	last, err := s.LastReport()
	assert.ErrorIs(t, err, domain.ErrPartialBatchFailure)
	require.NotNil(t, last)
	assert.Equal(t, 1, last.Failed)
}

func TestRunNow_RejectedRunIsNotRecorded(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context) (domain.AccrualReport, error) {
		return domain.AccrualReport{}, domain.ErrRunInProgress
	}}
	s, err := New("0 0 * * *", time.UTC, runner)
	require.NoError(t, err)

	_, err = s.RunNow(context.Background())
	require.ErrorIs(t, err, domain.ErrRunInProgress)

	last, err := s.LastReport()
	assert.NoError(t, err)
	assert.Nil(t, last)
}

func TestStart_FiresOnSchedule(t *testing.T) {
	runner := &fakeRunner{run: func(context.Context) (domain.AccrualReport, error) {
		return reportFor("2026-03-14", 1, 0), nil
	}}
	s, err := New("@every 1s", time.UTC, runner)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestStop_CancelsRunningPass(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	runner := &fakeRunner{run: func(ctx context.Context) (domain.AccrualReport, error) {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return reportFor("2026-03-14", 0, 0), ctx.Err()
	}}
	s, err := New("@every 1s", time.UTC, runner)
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled run never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, err = s.LastReport()
	assert.ErrorIs(t, err, context.Canceled)
}
