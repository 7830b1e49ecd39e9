package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSweeper struct{ mock.Mock }

func (m *mockSweeper) SweepExpired(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockSweeper) FailStalePayments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestExpiryWorker_TickSweepsBoth(t *testing.T) {
	m := &mockSweeper{}
	m.On("SweepExpired", mock.Anything).Return(int64(3), int64(1), nil).Once()
	m.On("FailStalePayments", mock.Anything).Return(2, nil).Once()

	w := NewExpiryWorker(m, m, time.Minute, zap.NewNop())
	w.tick(context.Background())

	m.AssertExpectations(t)
}

func TestExpiryWorker_SeatErrorStillFailsPayments(t *testing.T) {
	m := &mockSweeper{}
	m.On("SweepExpired", mock.Anything).Return(int64(0), int64(0), errors.New("db down")).Once()
	m.On("FailStalePayments", mock.Anything).Return(0, nil).Once()

	w := NewExpiryWorker(m, m, time.Minute, zap.NewNop())
	w.tick(context.Background())

	m.AssertExpectations(t)
}

func TestExpiryWorker_RunsOnInterval(t *testing.T) {
	m := &mockSweeper{}
	m.On("SweepExpired", mock.Anything).Return(int64(0), int64(0), nil)
	m.On("FailStalePayments", mock.Anything).Return(0, nil)

	w := NewExpiryWorker(m, m, 20*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()
	w.Start(ctx)

	assert.GreaterOrEqual(t, len(m.Calls), 2)
}

func TestExpiryWorker_StopsOnCancel(t *testing.T) {
	m := &mockSweeper{}
	w := NewExpiryWorker(m, m, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
	m.AssertNotCalled(t, "SweepExpired", mock.Anything)
}
