package profiler

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestDumpTreeFormat(t *testing.T) {
	p := New()
	p.now = fakeClock(time.Millisecond)

	// Every clock reading advances 1ms.
	update := p.Segment("update")
	front := update.Segment("render front")
	cam := front.Segment("camera to view")
	cam.End()
	front.End()
	notify := update.Segment("notify")
	notify.End()
	update.End()

	var sb strings.Builder
	if err := p.Dump(&sb); err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	want := strings.Join([]string{
		"update: 7ms",
		"|-render front: 3ms",
		"| |-camera to view: 1ms",
		"|-notify: 1ms",
		"",
	}, "\n")
	if sb.String() != want {
		t.Fatalf("Dump() =\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestFractionalMilliseconds(t *testing.T) {
	p := New()
	p.now = fakeClock(1500 * time.Microsecond)
	s := p.Segment("x")
	s.End()
	if got := s.String(); got != "x: 1.5ms\n" {
		t.Fatalf("String() = %q", got)
	}
}

func TestOpenSegmentAndEndOnce(t *testing.T) {
	p := New()
	p.now = fakeClock(time.Millisecond)
	s := p.Segment("")
	if s.Elapsed() != -1 {
		t.Fatalf("Elapsed() = %v before End, want -1", s.Elapsed())
	}
	if got := s.String(); got != "<unnamed segment>: running\n" {
		t.Fatalf("String() = %q", got)
	}
	s.End()
	s.End()
	if s.Elapsed() != time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 1ms", s.Elapsed())
	}
}

func TestTimePropagatesErrorAndEnds(t *testing.T) {
	p := New()
	boom := errors.New("boom")
	if err := p.Time("step", func() error { return boom }); err != boom {
		t.Fatalf("Time() error = %v, want boom", err)
	}
	var sb strings.Builder
	_ = p.Dump(&sb)
	if strings.Contains(sb.String(), "running") {
		t.Fatalf("segment left open: %q", sb.String())
	}
}

func TestClear(t *testing.T) {
	p := New()
	p.Segment("a").End()
	p.Clear()
	var sb strings.Builder
	_ = p.Dump(&sb)
	if sb.Len() != 0 {
		t.Fatalf("Dump() after Clear = %q, want empty", sb.String())
	}
}
