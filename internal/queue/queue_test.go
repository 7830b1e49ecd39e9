package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/service"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, mail Mail) error {
	return m.Called(ctx, mail).Error(0)
}

func sampleEvent(kind string) BookingEvent {
	return BookingEvent{
		Kind:       kind,
		TicketID:   42,
		AccountID:  7,
		Email:      "pat@example.com",
		FullName:   "Pat Payer",
		MovieTitle: "Dune: Part Two",
		ShowTime:   time.Date(2025, 3, 2, 19, 30, 0, 0, time.UTC),
		ScreenName: "Screen 1",
		Seats:      []string{"A1", "A2"},
		Amount:     "22.50",
	}
}

func TestRender_Confirmed(t *testing.T) {
	m, err := Render(sampleEvent(KindBookingConfirmed))
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", m.To)
	assert.Equal(t, "Your Booking Confirmation", m.Subject)
	for _, want := range []string{
		"Hello Pat Payer,",
		"Movie: Dune: Part Two",
		"Date: 02/03/2025 19:30",
		"Screen: Screen 1",
		"Seats: A1, A2",
		"Amount paid: 22.50",
		"Ticket: #42",
		"The Movie Booking Team",
	} {
		assert.Contains(t, m.Body, want)
	}
}

func TestRender_ConfirmedOmitsEmptyOptionalLines(t *testing.T) {
	ev := sampleEvent(KindBookingConfirmed)
	ev.ScreenName, ev.Amount = "", ""
	m, err := Render(ev)
	require.NoError(t, err)
	assert.NotContains(t, m.Body, "Screen:")
	assert.NotContains(t, m.Body, "Amount paid")
}

func TestRender_Cancelled(t *testing.T) {
	m, err := Render(sampleEvent(KindBookingCancelled))
	require.NoError(t, err)
	assert.Equal(t, "Your Booking Has Been Cancelled", m.Subject)
	assert.Contains(t, m.Body, "booking #42 has been cancelled")
	assert.Contains(t, m.Body, "Date & Time: 02/03/2025 19:30")
}

func TestRender_Rejects(t *testing.T) {
	_, err := Render(sampleEvent("booking.moved"))
	assert.Error(t, err)

	ev := sampleEvent(KindBookingConfirmed)
	ev.Email = ""
	_, err = Render(ev)
	assert.Error(t, err)
}

func TestConsumerHandle(t *testing.T) {
	ctx := context.Background()
	body, err := json.Marshal(sampleEvent(KindBookingConfirmed))
	require.NoError(t, err)

	t.Run("sends", func(t *testing.T) {
		mailer := &mockMailer{}
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(m Mail) bool {
			return m.To == "pat@example.com" && m.Subject == "Your Booking Confirmation"
		})).Return(nil).Once()
		c := NewConsumer("", mailer, zap.NewNop())
		require.NoError(t, c.Handle(ctx, body))
		mailer.AssertExpectations(t)
	})

	t.Run("malformed body is poison", func(t *testing.T) {
		c := NewConsumer("", &mockMailer{}, zap.NewNop())
		assert.ErrorIs(t, c.Handle(ctx, []byte("{")), errPoison)
	})

	t.Run("unknown kind is poison", func(t *testing.T) {
		raw, _ := json.Marshal(sampleEvent("booking.moved"))
		c := NewConsumer("", &mockMailer{}, zap.NewNop())
		assert.ErrorIs(t, c.Handle(ctx, raw), errPoison)
	})

	t.Run("mailer failure is retryable", func(t *testing.T) {
		mailer := &mockMailer{}
		mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay down"))
		c := NewConsumer("", mailer, zap.NewNop())
		err := c.Handle(ctx, body)
		require.Error(t, err)
		assert.NotErrorIs(t, err, errPoison)
	})
}

func TestInline_RendersAndSends(t *testing.T) {
	mailer := &mockMailer{}
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m Mail) bool {
		return m.Subject == "Your Booking Has Been Cancelled"
	})).Return(nil).Once()

	err := Inline{Mailer: mailer}.BookingCancelled(context.Background(), service.BookingNotice{
		TicketID: 3,
		Email:    "pat@example.com",
		FullName: "Pat Payer",
		Seats:    []string{"B4"},
	})
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestFileMailer_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mail.log")
	m := NewFileMailer(path)
	require.NoError(t, m.Send(context.Background(), Mail{To: "a@example.com", Subject: "one", Body: "first"}))
	require.NoError(t, m.Send(context.Background(), Mail{To: "b@example.com", Subject: "two", Body: "second"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `to=a@example.com subject="one"`)
	assert.Contains(t, string(raw), "second\n---\n")
}

func TestEventFromNotice(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	ev := EventFromNotice(KindBookingConfirmed, service.BookingNotice{TicketID: 9, Amount: "10.00"}, at)
	assert.Equal(t, KindBookingConfirmed, ev.Kind)
	assert.Equal(t, uint64(9), ev.TicketID)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
}
