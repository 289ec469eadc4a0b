package mute

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestStore creates a Store connected to a local Redis instance and flushes
// all mute and offense keys before returning.  Tests that call this helper
// require a running Redis on localhost:6379.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	// Clean up any leftover test keys (both mute: and offenses: prefixes).
	for _, prefix := range []string{MutePrefix + "test_*", OffensesPrefix + "test_*"} {
		iter := client.Scan(ctx, 0, prefix, 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	t.Cleanup(func() {
		for _, prefix := range []string{MutePrefix + "test_*", OffensesPrefix + "test_*"} {
			iter := client.Scan(ctx, 0, prefix, 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
		}
		client.Close()
	})
	return NewStore(client)
}

func TestIsMuted_NotMuted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	muted, remaining, reason, err := store.IsMuted(ctx, "test_no_mute")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if muted {
		t.Errorf("expected not muted, got muted (remaining=%d reason=%q)", remaining, reason)
	}
}

func TestMuteAndCheck(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_mute_check"

	if err := store.Mute(ctx, sid, 30*time.Second, "profanity"); err != nil {
		t.Fatalf("Mute() error: %v", err)
	}

	muted, remaining, reason, err := store.IsMuted(ctx, sid)
	if err != nil {
		t.Fatalf("IsMuted() error: %v", err)
	}
	if !muted {
		t.Fatal("expected muted=true")
	}
	if reason != "profanity" {
		t.Errorf("expected reason=%q, got %q", "profanity", reason)
	}
	if remaining <= 0 || remaining > 30 {
		t.Errorf("expected remaining in (0,30], got %d", remaining)
	}
}

func TestUnmute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_unmute"

	if err := store.Mute(ctx, sid, time.Minute, "test"); err != nil {
		t.Fatalf("Mute() error: %v", err)
	}

	// Verify muted.
	muted, _, _, _ := store.IsMuted(ctx, sid)
	if !muted {
		t.Fatal("expected muted=true after Mute()")
	}

	// Unmute and verify.
	if err := store.Unmute(ctx, sid); err != nil {
		t.Fatalf("Unmute() error: %v", err)
	}
	muted, _, _, err := store.IsMuted(ctx, sid)
	if err != nil {
		t.Fatalf("IsMuted() error: %v", err)
	}
	if muted {
		t.Error("expected not muted after Unmute()")
	}
}

// ---------------------------------------------------------------------------
// Escalation tests
// ---------------------------------------------------------------------------

func TestEscalationDuration(t *testing.T) {
	cases := []struct {
		count    int
		expected time.Duration
	}{
		{0, Mute15Min},
		{1, Mute15Min},
		{2, Mute1Hour},
		{3, Mute24Hour},
		{4, Mute24Hour},
		{10, Mute24Hour},
	}
	for _, tc := range cases {
		got := escalationDuration(tc.count)
		if got != tc.expected {
			t.Errorf("escalationDuration(%d) = %v, want %v", tc.count, got, tc.expected)
		}
	}
}

func TestGetOffenseCount_NoOffenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.GetOffenseCount(ctx, "test_no_offenses")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 offenses, got %d", count)
	}
}

func TestRecordViolation_WarningsBeforeMute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_warnings"

	for i := 1; i <= WarnLimit; i++ {
		muted, duration, count, err := store.RecordViolation(ctx, sid, "profanity")
		if err != nil {
			t.Fatalf("RecordViolation() error: %v", err)
		}
		if muted {
			t.Fatalf("violation %d: expected warning, got mute", i)
		}
		if duration != 0 {
			t.Errorf("violation %d: expected duration=0, got %v", i, duration)
		}
		if count != i {
			t.Errorf("violation %d: expected count=%d, got %d", i, i, count)
		}
	}

	// Still not muted.
	isMuted, _, _, _ := store.IsMuted(ctx, sid)
	if isMuted {
		t.Error("session should not be muted within the warning limit")
	}
}

func TestRecordViolation_FirstMute_15Min(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_first_mute"

	// Burn through the warnings.
	for i := 0; i < WarnLimit; i++ {
		store.RecordViolation(ctx, sid, "profanity")
	}

	muted, duration, _, err := store.RecordViolation(ctx, sid, "profanity")
	if err != nil {
		t.Fatalf("RecordViolation() error: %v", err)
	}
	if !muted {
		t.Fatal("expected muted=true past the warning limit")
	}
	if duration != Mute15Min {
		t.Errorf("first mute: expected %v, got %v", Mute15Min, duration)
	}

	// Verify the mute is in place.
	isMuted, remaining, reason, err := store.IsMuted(ctx, sid)
	if err != nil {
		t.Fatalf("IsMuted() error: %v", err)
	}
	if !isMuted {
		t.Fatal("expected IsMuted=true after first mute")
	}
	if reason != "profanity" {
		t.Errorf("expected reason=%q, got %q", "profanity", reason)
	}
	// 15 min = 900 seconds; allow some slack for test execution time.
	if remaining < 890 || remaining > 900 {
		t.Errorf("expected remaining ~900s, got %d", remaining)
	}
}

func TestRecordViolation_SecondMute_1Hour(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_second_mute"

	// Warnings plus first mute.
	for i := 0; i < WarnLimit+1; i++ {
		store.RecordViolation(ctx, sid, "profanity")
	}

	// Unmute so we can clearly test the second mute duration.
	store.Unmute(ctx, sid)

	muted, duration, _, err := store.RecordViolation(ctx, sid, "harassment")
	if err != nil {
		t.Fatalf("RecordViolation() error: %v", err)
	}
	if !muted {
		t.Fatal("expected muted=true")
	}
	if duration != Mute1Hour {
		t.Errorf("second mute: expected %v, got %v", Mute1Hour, duration)
	}

	// Verify mute.
	isMuted, remaining, _, err := store.IsMuted(ctx, sid)
	if err != nil {
		t.Fatalf("IsMuted() error: %v", err)
	}
	if !isMuted {
		t.Fatal("expected IsMuted=true after second mute")
	}
	// 1 hour = 3600 seconds.
	if remaining < 3590 || remaining > 3600 {
		t.Errorf("expected remaining ~3600s, got %d", remaining)
	}
}

func TestRecordViolation_ThirdMute_24Hour(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_third_mute"

	// Warnings plus two mutes.
	for i := 0; i < WarnLimit+2; i++ {
		store.RecordViolation(ctx, sid, "profanity")
	}
	store.Unmute(ctx, sid)

	muted, duration, _, err := store.RecordViolation(ctx, sid, "serious")
	if err != nil {
		t.Fatalf("RecordViolation() error: %v", err)
	}
	if !muted {
		t.Fatal("expected muted=true")
	}
	if duration != Mute24Hour {
		t.Errorf("third mute: expected %v, got %v", Mute24Hour, duration)
	}

	// 24h = 86400 seconds.
	_, remaining, _, _ := store.IsMuted(ctx, sid)
	if remaining < 86390 || remaining > 86400 {
		t.Errorf("expected remaining ~86400s, got %d", remaining)
	}
}

func TestRecordViolation_FourthMute_StillCapped24Hour(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_fourth_mute"

	// Warnings plus three mutes.
	for i := 0; i < WarnLimit+3; i++ {
		store.RecordViolation(ctx, sid, "profanity")
	}
	store.Unmute(ctx, sid)

	// Fourth mute should still be 24h (no permanent mutes).
	muted, duration, _, err := store.RecordViolation(ctx, sid, "repeat")
	if err != nil {
		t.Fatalf("RecordViolation() error: %v", err)
	}
	if !muted {
		t.Fatal("expected muted=true")
	}
	if duration != Mute24Hour {
		t.Errorf("fourth mute: expected %v (capped), got %v", Mute24Hour, duration)
	}
}

func TestOffenseCounterTTL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_offense_ttl"

	// Record a violation to create the counter.
	store.RecordViolation(ctx, sid, "test")

	// Verify the counter has a TTL set (should be close to 24h).
	key := OffensesPrefix + sid
	ttl, err := store.client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL() error: %v", err)
	}
	// TTL should be positive and close to 24h (86400s). Allow 10s slack.
	if ttl < 86390*time.Second || ttl > 86400*time.Second {
		t.Errorf("expected TTL ~24h, got %v", ttl)
	}
}

func TestGetOffenseCount_AfterViolations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := "test_offense_count"

	store.RecordViolation(ctx, sid, "a")
	store.RecordViolation(ctx, sid, "b")
	store.RecordViolation(ctx, sid, "c")

	count, err := store.GetOffenseCount(ctx, sid)
	if err != nil {
		t.Fatalf("GetOffenseCount() error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count=3, got %d", count)
	}
}
