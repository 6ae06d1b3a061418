package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetCreatesDefaults(t *testing.T) {
	s := NewStore()

	sess := s.Get(100)
	assert.Equal(t, int64(100), sess.ChatID)
	assert.False(t, sess.IsAdmin)
	assert.False(t, sess.CaptchaSolved)
	assert.Nil(t, sess.State)
	assert.Equal(t, map[string]bool{
		"channel_1": false,
		"channel_2": false,
		"group":     false,
	}, sess.Verified)

	// Same chat gets the same session back.
	sess.CaptchaSolved = true
	assert.True(t, s.Get(100).CaptchaSolved)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	now := time.Now()
	s := NewStoreWithClock(func() time.Time { return now })

	s.Get(1)
	s.Get(2)

	now = now.Add(IdleTimeout + time.Minute)
	s.Get(2) // activity keeps this one alive

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	// The evicted chat starts over with a fresh session.
	now = now.Add(time.Minute)
	sess := s.Get(1)
	assert.False(t, sess.CaptchaSolved)
}

func TestSession_AllVerified(t *testing.T) {
	sess := &Session{Verified: map[string]bool{
		"channel_1": true,
		"channel_2": false,
		"group":     true,
	}}

	required := []string{"channel_1", "channel_2", "group"}
	assert.False(t, sess.AllVerified(required))

	sess.Verified["channel_2"] = true
	assert.True(t, sess.AllVerified(required))

	assert.False(t, sess.AllVerified([]string{"channel_1", "unknown"}))
}

func TestSession_ClearStateKeepsIdentityFlags(t *testing.T) {
	sess := &Session{
		IsAdmin:       true,
		CaptchaSolved: true,
		State:         ProfileState{Step: ProfileStepWallet},
	}

	sess.ClearState()
	assert.Nil(t, sess.State)
	assert.True(t, sess.IsAdmin)
	assert.True(t, sess.CaptchaSolved)
}
