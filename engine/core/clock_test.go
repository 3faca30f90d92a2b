package core

import (
	"testing"
	"time"
)

func TestClockElapsedAdvancesAfterStart(t *testing.T) {
	c := NewClock()
	if c.Elapsed() != 0 {
		t.Fatalf("Elapsed() before Start = %v, want 0", c.Elapsed())
	}
	c.Start()
	time.Sleep(time.Millisecond)
	c.Update()
	if c.Elapsed() <= 0 {
		t.Fatalf("Elapsed() after Start+Update = %v, want > 0", c.Elapsed())
	}
}

func TestClockStopFreezesElapsed(t *testing.T) {
	c := NewClock()
	c.Start()
	time.Sleep(time.Millisecond)
	c.Update()
	c.Stop()
	frozen := c.Elapsed()
	time.Sleep(time.Millisecond)
	c.Update()
	if c.Elapsed() != frozen {
		t.Fatalf("Elapsed() after Stop+Update = %v, want unchanged %v", c.Elapsed(), frozen)
	}
}

func TestClockUpdateNoOpBeforeStart(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Fatalf("Elapsed() after Update on unstarted clock = %v, want 0", c.Elapsed())
	}
}
