// Package profiler records nested wall-clock timings for one host update and
// prints them as an indented tree.
package profiler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Profiler collects top-level segments. It is safe for concurrent use, but
// a single segment tree is expected to be built by one goroutine.
type Profiler struct {
	mu       sync.Mutex
	segments []*Segment
	now      func() time.Time
}

// New returns an empty profiler.
func New() *Profiler {
	return &Profiler{now: time.Now}
}

// Segment starts timing a new top-level segment. Call End when done.
func (p *Profiler) Segment(name string) *Segment {
	s := newSegment(name, p.now)
	p.mu.Lock()
	p.segments = append(p.segments, s)
	p.mu.Unlock()
	return s
}

// Time runs fn inside a top-level segment.
func (p *Profiler) Time(name string, fn func() error) error {
	s := p.Segment(name)
	defer s.End()
	return fn()
}

// Dump writes every recorded segment tree to w:
//
//	update: 42.5ms
//	|-render front: 20ms
//	| |-camera to view: 1.25ms
func (p *Profiler) Dump(w io.Writer) error {
	p.mu.Lock()
	segments := append([]*Segment(nil), p.segments...)
	p.mu.Unlock()

	bw := bufio.NewWriter(w)
	for _, s := range segments {
		s.dump(bw, 0)
	}
	return bw.Flush()
}

// Clear drops all recorded segments.
func (p *Profiler) Clear() {
	p.mu.Lock()
	p.segments = nil
	p.mu.Unlock()
}

// Segment is one timed span with optional children.
type Segment struct {
	Name string

	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	elapsed  time.Duration
	ended    bool
	children []*Segment
}

func newSegment(name string, now func() time.Time) *Segment {
	if name == "" {
		name = "<unnamed segment>"
	}
	return &Segment{Name: name, now: now, start: now()}
}

// Segment starts timing a child segment.
func (s *Segment) Segment(name string) *Segment {
	child := newSegment(name, s.now)
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	return child
}

// Time runs fn inside a child segment.
func (s *Segment) Time(name string, fn func() error) error {
	child := s.Segment(name)
	defer child.End()
	return fn()
}

// End stops the clock. Only the first call has an effect.
func (s *Segment) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.elapsed = s.now().Sub(s.start)
	s.ended = true
}

// Elapsed returns the measured duration, or -1 while the segment is open.
func (s *Segment) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		return -1
	}
	return s.elapsed
}

func (s *Segment) dump(w *bufio.Writer, level int) {
	for i := 1; i < level; i++ {
		w.WriteString("| ")
	}
	if level > 0 {
		w.WriteString("|-")
	}

	w.WriteString(s.Name)
	w.WriteString(": ")
	if elapsed := s.Elapsed(); elapsed < 0 {
		w.WriteString("running")
	} else {
		ms := float64(elapsed) / float64(time.Millisecond)
		w.WriteString(strconv.FormatFloat(ms, 'f', -1, 64))
		w.WriteString("ms")
	}
	w.WriteByte('\n')

	s.mu.Lock()
	children := append([]*Segment(nil), s.children...)
	s.mu.Unlock()
	for _, child := range children {
		child.dump(w, level+1)
	}
}

// String renders the segment tree rooted at s.
func (s *Segment) String() string {
	var sb strings.Builder
	bw := bufio.NewWriter(&sb)
	s.dump(bw, 0)
	bw.Flush()
	return sb.String()
}
