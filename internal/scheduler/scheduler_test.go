package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watercan/internal/config"
	"github.com/mamadbah2/watercan/internal/domain/models"
)

type fakeDigest struct {
	windows []models.DateRange
	text    string
	err     error
}

func (f *fakeDigest) Digest(_ context.Context, window models.DateRange) (string, error) {
	f.windows = append(f.windows, window)
	return f.text, f.err
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) NotifyManager(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func newTestScheduler(t *testing.T, digest DigestBuilder, notifier *fakeNotifier) *Scheduler {
	t.Helper()
	s, err := NewScheduler(config.ReportingConfig{
		DigestEnabled: true,
		CronSchedule:  "0 20 * * *",
		Timezone:      "UTC",
		DigestDays:    1,
	}, digest, notifier, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC) }
	return s
}

func TestRunDigest_SendsPreviousDay(t *testing.T) {
	digest := &fakeDigest{text: "Deliveries 2024-03-09 to 2024-03-09"}
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, digest, notifier)

	require.NoError(t, s.RunDigest(context.Background()))

	require.Len(t, digest.windows, 1)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), *digest.windows[0].Start)
	assert.True(t, digest.windows[0].End.Before(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{digest.text}, notifier.messages)
}

func TestRunDigest_PropagatesFailures(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newTestScheduler(t, &fakeDigest{err: errors.New("mongo down")}, notifier)
	assert.Error(t, s.RunDigest(context.Background()))
	assert.Empty(t, notifier.messages)

	notifier = &fakeNotifier{err: errors.New("whatsapp down")}
	s = newTestScheduler(t, &fakeDigest{text: "hello"}, notifier)
	assert.Error(t, s.RunDigest(context.Background()))
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{Timezone: "Nowhere/Land"}, &fakeDigest{}, &fakeNotifier{}, nil)
	assert.Error(t, err)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every day", Timezone: "UTC", DigestDays: 1}, &fakeDigest{}, &fakeNotifier{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())

	s, err = NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC", DigestDays: 1}, &fakeDigest{}, &fakeNotifier{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}
