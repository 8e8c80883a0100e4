package format

import (
	"strings"
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	day := time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)

	t.Run("english", func(t *testing.T) {
		got := New("en").Date(day)
		if got != "June 12, 2025" {
			t.Errorf("unexpected date: %q", got)
		}
	})

	t.Run("arabic", func(t *testing.T) {
		got := New("ar").Date(day)
		if !strings.Contains(got, "يونيو") {
			t.Errorf("expected Arabic June, got %q", got)
		}
		if !strings.Contains(got, "2025") {
			t.Errorf("expected year, got %q", got)
		}
	})
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2025, time.June, 12, 9, 5, 0, 0, time.UTC)
	got := New("en").DateTime(ts)
	if got != "June 12, 2025 09:05" {
		t.Errorf("unexpected datetime: %q", got)
	}
}

func TestCurrency(t *testing.T) {
	t.Run("english uses dollars", func(t *testing.T) {
		got := New("en").Currency(123456)
		if !strings.Contains(got, "$") {
			t.Errorf("expected dollar symbol, got %q", got)
		}
		if !strings.Contains(got, "1,234.56") && !strings.Contains(got, "1234.56") {
			t.Errorf("expected amount 1234.56, got %q", got)
		}
	})

	t.Run("arabic uses riyals", func(t *testing.T) {
		got := New("ar").Currency(123456)
		if got == "" {
			t.Fatal("expected a formatted amount")
		}
		if strings.Contains(got, "$") {
			t.Errorf("Arabic formatting should not use dollars, got %q", got)
		}
	})
}

func TestMonthLabel(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		got := New("en").MonthLabel("2025-06")
		if got != "June 2025" {
			t.Errorf("unexpected label: %q", got)
		}
	})

	t.Run("arabic", func(t *testing.T) {
		got := New("ar").MonthLabel("2025-06")
		if !strings.Contains(got, "يونيو") || !strings.Contains(got, "2025") {
			t.Errorf("unexpected label: %q", got)
		}
	})

	t.Run("invalid key passes through", func(t *testing.T) {
		got := New("en").MonthLabel("June 2025")
		if got != "June 2025" {
			t.Errorf("invalid key should be returned unchanged, got %q", got)
		}
	})
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	got := New("fr").MonthLabel("2025-01")
	if got != "January 2025" {
		t.Errorf("unexpected label: %q", got)
	}
}
