package quotes

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	ttl := 7 * 24 * time.Hour
	fresh := Quote{CreatedAt: time.Now().Add(-time.Hour)}
	stale := Quote{CreatedAt: time.Now().Add(-8 * 24 * time.Hour)}

	if fresh.Expired(ttl) {
		t.Error("hour-old quote should not be expired")
	}
	if !stale.Expired(ttl) {
		t.Error("week-old quote should be expired")
	}
}
