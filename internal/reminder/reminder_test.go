package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/atelier/internal/feed"
)

type fakeSource struct {
	overdue  int
	upcoming int
	err      error
	window   time.Duration
}

func (f *fakeSource) CountOverdue(context.Context) (int, error) { return f.overdue, f.err }

func (f *fakeSource) CountUpcoming(_ context.Context, w time.Duration) (int, error) {
	f.window = w
	return f.upcoming, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []bool
}

func (r *fakeRecorder) RecordSweep(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, ok)
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	_, err := New(Config{Source: &fakeSource{}, Schedule: "every tuesday-ish"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reminder schedule")
}

func TestSweep_PublishesSummary(t *testing.T) {
	src := &fakeSource{overdue: 3, upcoming: 2}
	rec := &fakeRecorder{}
	broker := feed.NewBroker()
	ch := broker.Subscribe()

	s, err := New(Config{Source: src, Publisher: broker, Recorder: rec, Window: time.Hour})
	require.NoError(t, err)

	sum, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.OverdueOrders)
	assert.Equal(t, 2, sum.UpcomingAppointments)
	assert.Equal(t, time.Hour, src.window)
	assert.Equal(t, sum, s.Last())
	assert.Equal(t, []bool{true}, rec.results)

	select {
	case c := <-ch:
		assert.Equal(t, Resource, c.Resource)
		assert.Equal(t, "sweep", c.Action)
		assert.Equal(t, sum, c.Data)
	case <-time.After(time.Second):
		t.Fatal("sweep was not published")
	}
}

func TestSweep_SourceError(t *testing.T) {
	rec := &fakeRecorder{}
	s, err := New(Config{Source: &fakeSource{err: errors.New("database is locked")}, Recorder: rec})
	require.NoError(t, err)

	_, err = s.Sweep(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, []bool{false}, rec.results)
	assert.Zero(t, s.Last())
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	s, err := New(Config{Source: &fakeSource{}, Schedule: "@every 1h"})
	require.NoError(t, err)

	s.Stop() // before start
	s.Start()
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
