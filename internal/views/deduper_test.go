package views_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/techpolitics/newsfeed/internal/views"
)

func TestDeduperSeen(t *testing.T) {
	d := views.NewDeduper(10, time.Minute)
	require.False(t, d.Seen("evt-1"))
	d.Remember("evt-1")
	require.True(t, d.Seen("evt-1"))
	require.False(t, d.Seen("evt-2"))
}

func TestDeduperTTLExpiry(t *testing.T) {
	d := views.NewDeduper(10, 20*time.Millisecond)
	d.Remember("evt-1")
	time.Sleep(25 * time.Millisecond)
	require.False(t, d.Seen("evt-1"))
}

func TestDeduperCapacityEvictsOldest(t *testing.T) {
	d := views.NewDeduper(1, time.Minute)
	d.Remember("first")
	d.Remember("second")
	require.False(t, d.Seen("first"))
	require.True(t, d.Seen("second"))
}
