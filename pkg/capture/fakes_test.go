package capture

import (
	"errors"
	"sort"
	"sync"
	"time"
)

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Time
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler only fires timers from Advance, on the calling goroutine.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now.Add(d), delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// pending returns the delays of the timers that may still fire.
func (s *fakeScheduler) pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.delay)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// pendingExcept is pending without timers of the given delay.
func (s *fakeScheduler) pendingExcept(d time.Duration) []time.Duration {
	var out []time.Duration
	for _, p := range s.pending() {
		if p != d {
			out = append(out, p)
		}
	}
	return out
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(s.now) {
			s.now = next.at
		}
		s.mu.Unlock()

		next.f()
	}
}

var errAlreadyStarted = errors.New("recognition has already started")

type fakeRecognizer struct {
	mu       sync.Mutex
	cfg      RecognizerConfig
	ev       Events
	locale   string
	starts   int
	stops    int
	aborts   int
	startErr error
}

func (r *fakeRecognizer) SetLanguage(locale string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locale = locale
}

func (r *fakeRecognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	return r.startErr
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	return nil
}

func (r *fakeRecognizer) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts++
	return nil
}

func (r *fakeRecognizer) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

func (r *fakeRecognizer) Locale() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locale
}

func (r *fakeRecognizer) final(text string) {
	r.ev.OnResult(ResultEvent{Results: []Result{{Transcript: text, Confidence: 0.9, IsFinal: true}}})
}

func (r *fakeRecognizer) interim(text string) {
	r.ev.OnResult(ResultEvent{Results: []Result{{Transcript: text, Confidence: 0.5}}})
}

func (r *fakeRecognizer) fail(code ErrorCode) {
	r.ev.OnError(RecognitionError{Code: code})
}

type fakeFactory struct {
	mu        sync.Mutex
	supported bool
	startErr  error
	newErr    error
	recs      []*fakeRecognizer
}

func (f *fakeFactory) Supported() bool {
	return f.supported
}

func (f *fakeFactory) NewRecognizer(cfg RecognizerConfig, ev Events) (Recognizer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.newErr != nil {
		return nil, f.newErr
	}
	r := &fakeRecognizer{cfg: cfg, ev: ev, locale: cfg.Locale, startErr: f.startErr}
	f.recs = append(f.recs, r)
	return r, nil
}

func (f *fakeFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

func (f *fakeFactory) last() *fakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recs) == 0 {
		return nil
	}
	return f.recs[len(f.recs)-1]
}
