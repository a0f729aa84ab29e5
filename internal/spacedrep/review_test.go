package spacedrep

import (
	"testing"
	"time"
)

func TestIsDue_BeforeDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: now.Add(24 * time.Hour)}
	if rs.IsDue(now) {
		t.Error("expected not due before review date")
	}
}

func TestIsDue_OnDate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: now}
	if !rs.IsDue(now) {
		t.Error("expected due on review date")
	}
}

func TestIsDue_AfterDate(t *testing.T) {
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	if !rs.IsDue(now) {
		t.Error("expected due after review date")
	}
}

func TestOverdueDays_NotDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: now.Add(48 * time.Hour)}
	got := rs.OverdueDays(now)
	if got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
}

func TestOverdueDays_ThreeDaysOverdue(t *testing.T) {
	reviewDate := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := reviewDate.Add(3 * 24 * time.Hour)
	rs := &ReviewState{NextReviewAt: reviewDate}
	got := rs.OverdueDays(now)
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}
}

func TestDaysSinceAttempt(t *testing.T) {
	last := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{LastAttemptAt: last}

	if got := rs.DaysSinceAttempt(last.Add(36 * time.Hour)); got != 1.5 {
		t.Errorf("DaysSinceAttempt() = %f, want 1.5", got)
	}
	if got := rs.DaysSinceAttempt(last.Add(-time.Hour)); got != 0 {
		t.Errorf("DaysSinceAttempt() before last attempt = %f, want 0", got)
	}
	if got := (&ReviewState{}).DaysSinceAttempt(last); got != 0 {
		t.Errorf("DaysSinceAttempt() without attempt = %f, want 0", got)
	}
}

func TestStatus_NotDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{IntervalDays: 7, NextReviewAt: now.Add(5 * 24 * time.Hour)}
	got := rs.Status(now)
	if got != ReviewNotDue {
		t.Errorf("Status() = %q, want %q", got, ReviewNotDue)
	}
}

func TestStatus_Due(t *testing.T) {
	// 1 day overdue, 7-day interval grace is 3.5 days
	reviewDate := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := reviewDate.Add(1 * 24 * time.Hour)
	rs := &ReviewState{IntervalDays: 7, NextReviewAt: reviewDate}
	got := rs.Status(now)
	if got != ReviewDue {
		t.Errorf("Status() = %q, want %q", got, ReviewDue)
	}
}

func TestStatus_Overdue(t *testing.T) {
	// 5 days overdue, 7-day interval grace is 3.5 days
	reviewDate := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := reviewDate.Add(5 * 24 * time.Hour)
	rs := &ReviewState{IntervalDays: 7, NextReviewAt: reviewDate}
	got := rs.Status(now)
	if got != ReviewOverdue {
		t.Errorf("Status() = %q, want %q", got, ReviewOverdue)
	}
}

func TestStatus_Mastered_NotDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{Level: MaxLevel, IntervalDays: 30, NextReviewAt: now.Add(30 * 24 * time.Hour)}
	got := rs.Status(now)
	if got != ReviewMastered {
		t.Errorf("Status() = %q, want %q", got, ReviewMastered)
	}
}

func TestStatus_Mastered_Due(t *testing.T) {
	// Mastered items still come due.
	reviewDate := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := reviewDate.Add(2 * 24 * time.Hour)
	rs := &ReviewState{Level: MaxLevel, IntervalDays: 30, NextReviewAt: reviewDate}
	got := rs.Status(now)
	if got != ReviewDue {
		t.Errorf("Status() = %q, want %q", got, ReviewDue)
	}
}

func TestDaysUntilReview_FutureDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: now.Add(108 * time.Hour)} // 4.5 days
	got := rs.DaysUntilReview(now)
	if got != 5 {
		t.Errorf("DaysUntilReview() = %d, want 5", got)
	}
}

func TestDaysUntilReview_AlreadyDue(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	rs := &ReviewState{NextReviewAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	got := rs.DaysUntilReview(now)
	if got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0", got)
	}
}

func TestClone_CopiesResponseTime(t *testing.T) {
	ms := 1200
	rs := &ReviewState{EaseFactor: 2.5, LastResponseMs: &ms}
	c := rs.Clone()
	*c.LastResponseMs = 9
	if *rs.LastResponseMs != 1200 {
		t.Errorf("clone shares response time pointer")
	}
	if (*ReviewState)(nil).Clone() != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestValidate(t *testing.T) {
	neg := -1
	valid := NewReviewState()
	tests := []struct {
		name    string
		mutate  func(rs *ReviewState)
		wantErr bool
	}{
		{"fresh", func(rs *ReviewState) {}, false},
		{"ease too low", func(rs *ReviewState) { rs.EaseFactor = 1.0 }, true},
		{"ease too high", func(rs *ReviewState) { rs.EaseFactor = 3.0 }, true},
		{"negative interval", func(rs *ReviewState) { rs.IntervalDays = -2 }, true},
		{"reps without interval", func(rs *ReviewState) { rs.Repetitions = 2 }, true},
		{"quality out of range", func(rs *ReviewState) { rs.LastQuality = 6 }, true},
		{"negative response", func(rs *ReviewState) { rs.LastResponseMs = &neg }, true},
		{"difficulty out of range", func(rs *ReviewState) { rs.Difficulty = 1.5 }, true},
		{"level out of range", func(rs *ReviewState) { rs.Level = 4 }, true},
		{"negative counter", func(rs *ReviewState) { rs.IncorrectCount = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := valid
			tt.mutate(&rs)
			err := rs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
