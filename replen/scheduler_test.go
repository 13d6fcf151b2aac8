package replen

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// The DB handle is published after construction; handlers read it through the
// accessor, so a scheduler without a store must report nil, not panic.
func TestSchedulerDBPublication(t *testing.T) {
	s := NewScheduler(nil, logrus.New())
	if s.DB() != nil {
		t.Fatal("scheduler without a store must report a nil handle")
	}
	db := &gorm.DB{}
	s.SetDB(db)
	if s.DB() != db {
		t.Fatal("published handle must be visible through the accessor")
	}
}

func TestCadenceElapsed_NeverSynced(t *testing.T) {
	if !CadenceElapsed(nil, 30*time.Minute, time.Now()) {
		t.Fatal("a company that never synced must be due immediately")
	}
}

func TestCadenceElapsed(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	interval := 30 * time.Minute

	recent := now.Add(-10 * time.Minute)
	if CadenceElapsed(&recent, interval, now) {
		t.Fatal("10 minutes after success must not be due on a 30m cadence")
	}

	exact := now.Add(-30 * time.Minute)
	if !CadenceElapsed(&exact, interval, now) {
		t.Fatal("exactly one interval after success must be due")
	}

	old := now.Add(-2 * time.Hour)
	if !CadenceElapsed(&old, interval, now) {
		t.Fatal("long-overdue company must be due")
	}
}
