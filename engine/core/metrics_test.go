package core

import "testing"

func TestSubmitStatsAverageBeforeWindowFills(t *testing.T) {
	var s SubmitStats
	s.Observe(10)
	s.Observe(20)
	if got, want := s.AverageMillis(), 15.0; got != want {
		t.Fatalf("AverageMillis() = %v, want %v", got, want)
	}
	if s.Total != 2 {
		t.Fatalf("Total = %d, want 2", s.Total)
	}
}

func TestSubmitStatsAverageAfterWindowWraps(t *testing.T) {
	var s SubmitStats
	for i := 0; i < submitAvgWindow; i++ {
		s.Observe(1)
	}
	if got, want := s.AverageMillis(), 1.0; got != want {
		t.Fatalf("AverageMillis() = %v, want %v", got, want)
	}
	// One more sample of a very different value only replaces 1/30th of the window.
	s.Observe(31)
	got := s.AverageMillis()
	want := (float64(submitAvgWindow-1)*1 + 31) / float64(submitAvgWindow)
	if got != want {
		t.Fatalf("AverageMillis() after wrap = %v, want %v", got, want)
	}
}

func TestSubmitStatsTotalIsMonotonic(t *testing.T) {
	var s SubmitStats
	for i := 0; i < submitAvgWindow*3; i++ {
		s.Observe(float64(i))
	}
	if s.Total != int64(submitAvgWindow*3) {
		t.Fatalf("Total = %d, want %d", s.Total, submitAvgWindow*3)
	}
}
