package restore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/kuma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySession fails its list calls with a configurable error.
type flakySession struct {
	fakeSession
	listErr error
}

func (f *flakySession) Notifications() ([]kuma.NotificationInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.fakeSession.Notifications()
}

// queueDialer hands out sessions in order and counts dials.
func queueDialer(sessions ...kuma.Session) (kuma.Dialer, *int) {
	dials := new(int)
	return func() (kuma.Session, error) {
		if *dials >= len(sessions) {
			return nil, fmt.Errorf("no more sessions")
		}
		s := sessions[*dials]
		*dials++
		return s, nil
	}, dials
}

func retryTestList() []backup.Notification {
	return []backup.Notification{
		{ID: 1, Name: "Mail", Config: json.RawMessage(`{"type":"smtp"}`)},
	}
}

func TestRetry_ReconnectsOnceOnTransient(t *testing.T) {
	bad := &flakySession{listErr: fmt.Errorf("%w: notification list", kuma.ErrAckTimeout)}
	good := newFakeSession()

	dialer, dials := queueDialer(bad, good)
	r := New(Options{Dialer: dialer, Logger: log.New(io.Discard, "", 0)})

	idMap, err := r.RestoreNotifications(context.Background(), retryTestList())
	require.NoError(t, err)

	assert.Equal(t, 2, *dials, "transient failure dials a fresh session")
	assert.Equal(t, 1, bad.disconnects, "stale session is discarded")
	assert.Equal(t, map[int]int{1: 100}, idMap)
	require.Len(t, good.addedNotifications, 1)
}

func TestRetry_SecondFailurePropagates(t *testing.T) {
	first := &flakySession{listErr: fmt.Errorf("%w: notification list", kuma.ErrBadChannel)}
	second := &flakySession{listErr: fmt.Errorf("%w: notification list", kuma.ErrBadChannel)}

	dialer, dials := queueDialer(first, second)
	r := New(Options{Dialer: dialer, Logger: log.New(io.Discard, "", 0)})

	_, err := r.RestoreNotifications(context.Background(), retryTestList())
	require.Error(t, err)
	assert.True(t, kuma.IsTransient(err), "second failure propagates unchanged")
	assert.Equal(t, 2, *dials, "at most one retry per call")
}

func TestRetry_NonTransientNotRetried(t *testing.T) {
	first := &flakySession{listErr: &kuma.ServerError{Op: "getNotifications", Msg: "nope"}}
	second := newFakeSession()

	dialer, dials := queueDialer(first, second)
	r := New(Options{Dialer: dialer, Logger: log.New(io.Discard, "", 0)})

	_, err := r.RestoreNotifications(context.Background(), retryTestList())
	require.Error(t, err)
	assert.Equal(t, 1, *dials, "server rejection must not trigger a reconnect")
}

func TestRetry_CanceledContext(t *testing.T) {
	session := newFakeSession()
	dialer, _ := queueDialer(session)
	r := New(Options{Dialer: dialer, Logger: log.New(io.Discard, "", 0)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RestoreNotifications(ctx, retryTestList())
	require.Error(t, err)
	assert.Empty(t, session.addedNotifications)
}
