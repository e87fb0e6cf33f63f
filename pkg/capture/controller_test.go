package capture

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const refreshEvery = time.Minute

type harness struct {
	c *Controller
	f *fakeFactory
	s *fakeScheduler

	mu       sync.Mutex
	results  []Result
	errors   []string
	ends     int
	interims []string
	states   []State
}

func newHarness(t *testing.T, mutate ...func(*Options, *fakeFactory)) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		f: &fakeFactory{supported: true},
		s: newFakeScheduler(),
	}
	opts := Options{
		Language:       "ko",
		Continuous:     true,
		InterimResults: true,
		OnResult: func(r Result) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.results = append(h.results, r)
		},
		OnError: func(msg string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.errors = append(h.errors, msg)
		},
		OnEnd: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.ends++
		},
		OnInterim: func(text string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.interims = append(h.interims, text)
		},
		OnStateChange: func(s State) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.states = append(h.states, s)
		},
	}
	for _, m := range mutate {
		m(&opts, h.f)
	}

	h.c = NewController(h.f, opts, h.s, logger)
	return h
}

// listen starts capturing and confirms the start event.
func (h *harness) listen(t *testing.T) *fakeRecognizer {
	t.Helper()
	h.c.StartListening()
	rec := h.f.last()
	require.NotNil(t, rec)
	rec.ev.OnStart()
	require.True(t, h.c.IsListening())
	return rec
}

func (h *harness) errorMessages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}

// restarts returns the pending timers other than the refresh timer.
func (h *harness) restarts() []time.Duration {
	return h.s.pendingExcept(refreshEvery)
}

func TestController_StartListening_Unsupported(t *testing.T) {
	h := newHarness(t, func(_ *Options, f *fakeFactory) {
		f.supported = false
	})
	assert.False(t, h.c.IsSupported())

	h.c.StartListening()

	assert.Equal(t, []string{msgNotSupported}, h.errorMessages())
	assert.False(t, h.c.IsListening())
	assert.Equal(t, 0, h.f.created())
	assert.Empty(t, h.s.pending())
	assert.Equal(t, StateFailed, h.c.State())
}

func TestController_StartListening_CreatesHandleLazily(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.c.IsSupported())
	assert.Equal(t, 0, h.f.created())
	assert.Equal(t, StateIdle, h.c.State())

	h.c.StartListening()
	require.Equal(t, 1, h.f.created())
	rec := h.f.last()

	assert.Equal(t, RecognizerConfig{Continuous: true, InterimResults: true, MaxAlternatives: 1, Locale: "ko-KR"}, rec.cfg)
	assert.Equal(t, "ko-KR", rec.Locale())
	assert.Equal(t, 1, rec.Starts())
	assert.Equal(t, StateStarting, h.c.State())
	assert.False(t, h.c.IsListening())
	assert.Equal(t, []time.Duration{refreshEvery}, h.s.pending())

	rec.ev.OnAudioStart()
	rec.ev.OnStart()
	assert.True(t, h.c.IsListening())
	assert.Equal(t, StateListening, h.c.State())

	// a second start while running doesn't restart the recognizer
	h.c.StartListening()
	assert.Equal(t, 1, rec.Starts())
	assert.Equal(t, 1, h.f.created())
}

func TestController_StartListening_FactoryError(t *testing.T) {
	h := newHarness(t, func(_ *Options, f *fakeFactory) {
		f.newErr = assert.AnError
	})

	h.c.StartListening()
	assert.Equal(t, []string{msgInitFailed}, h.errorMessages())
	assert.Equal(t, StateFailed, h.c.State())
	assert.Empty(t, h.s.pending())
}

func TestController_NoSpeech_NeverSurfacesAndKeepsOneRestart(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	for i := 0; i < 10; i++ {
		rec.fail(ErrorNoSpeech)
		rec.ev.OnEnd()
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, h.restarts())

		h.s.Advance(500 * time.Millisecond)
		assert.Empty(t, h.restarts())
		rec.ev.OnStart()
	}

	assert.Empty(t, h.errorMessages())
	assert.Equal(t, 11, rec.Starts())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
	assert.True(t, h.c.IsListening())
}

func TestController_NetworkErrors_BackoffThenGiveUp(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	var delays []time.Duration
	for i := 0; i < 4; i++ {
		rec.fail(ErrorNetwork)
		rec.ev.OnEnd()

		pending := h.restarts()
		require.Len(t, pending, 1)
		delays = append(delays, pending[0])

		h.s.Advance(pending[0])
		rec.ev.OnStart()
	}
	assert.Equal(t, []time.Duration{
		300 * time.Millisecond,
		600 * time.Millisecond,
		1200 * time.Millisecond,
		2400 * time.Millisecond,
	}, delays)
	assert.Equal(t, 4, h.c.ConsecutiveErrors())
	assert.Empty(t, h.errorMessages())

	rec.fail(ErrorNetwork)
	assert.Equal(t, []string{msgNetworkExhausted}, h.errorMessages())
	assert.Equal(t, StateFailed, h.c.State())
	assert.False(t, h.c.IsListening())
	assert.Empty(t, h.s.pending())

	rec.ev.OnEnd()
	h.s.Advance(time.Minute)
	assert.Empty(t, h.s.pending())
	assert.Equal(t, 5, rec.Starts())
	assert.Len(t, h.errorMessages(), 1)
}

func TestController_FiveNetworkErrorsInARow(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	for i := 0; i < 5; i++ {
		rec.fail(ErrorNetwork)
	}
	rec.ev.OnEnd()

	assert.Equal(t, []string{msgNetworkExhausted}, h.errorMessages())
	assert.Empty(t, h.restarts())
	h.s.Advance(10 * time.Second)
	assert.Equal(t, 1, rec.Starts())
}

func TestController_AudioCapture(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	for i := 0; i < 4; i++ {
		rec.fail(ErrorAudioCapture)
		assert.Equal(t, []time.Duration{time.Second}, h.restarts())
		h.s.Advance(time.Second)
		rec.ev.OnStart()
	}
	assert.Empty(t, h.errorMessages())

	rec.fail(ErrorAudioCapture)
	assert.Equal(t, []string{msgCheckMicrophone}, h.errorMessages())
	assert.Equal(t, StateFailed, h.c.State())
	assert.Empty(t, h.s.pending())
}

func TestController_OtherErrorsAreFatal(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	rec.fail(ErrorNotAllowed)
	assert.Equal(t, []string{ErrorMessage(ErrorNotAllowed)}, h.errorMessages())
	assert.False(t, h.c.IsListening())
	assert.Equal(t, StateFailed, h.c.State())

	rec.ev.OnEnd()
	assert.Empty(t, h.s.pending())
	assert.Equal(t, StateFailed, h.c.State())

	// the user may try again
	h.c.StartListening()
	assert.Equal(t, 2, rec.Starts())
	rec.ev.OnStart()
	assert.True(t, h.c.IsListening())
}

func TestController_AbortedIsIgnored(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	rec.fail(ErrorAborted)
	assert.Empty(t, h.errorMessages())
	assert.Empty(t, h.restarts())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
	assert.Equal(t, StateListening, h.c.State())
}

func TestController_StopListening_CancelsPendingRestart(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)
	rec.interim("half a sen")
	require.Equal(t, "half a sen", h.c.InterimTranscript())

	rec.fail(ErrorNoSpeech)
	require.Len(t, h.restarts(), 1)

	h.c.StopListening()
	assert.Empty(t, h.s.pending())
	assert.False(t, h.c.IsListening())
	assert.Equal(t, "", h.c.InterimTranscript())
	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, 1, rec.stops)

	h.s.Advance(time.Minute)
	assert.Equal(t, 1, rec.Starts())

	// a late start event must not flip the listening state
	rec.ev.OnStart()
	assert.False(t, h.c.IsListening())
	assert.Equal(t, 2, rec.stops)

	rec.ev.OnEnd()
	assert.Empty(t, h.s.pending())
	assert.Empty(t, h.errorMessages())
}

func TestController_FinalResultClearsInterimAndErrors(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	rec.fail(ErrorNetwork)
	h.s.Advance(300 * time.Millisecond)
	rec.fail(ErrorNetwork)
	require.Equal(t, 2, h.c.ConsecutiveErrors())

	rec.interim("hel")
	assert.Equal(t, "hel", h.c.InterimTranscript())
	rec.interim("hello wor")
	assert.Equal(t, "hello wor", h.c.InterimTranscript())

	rec.final("hello world")
	assert.Equal(t, "", h.c.InterimTranscript())
	assert.Equal(t, "hello world", h.c.Transcript())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
	assert.Equal(t, []Result{{Transcript: "hello world", Confidence: 0.9, IsFinal: true}}, h.results)
	assert.Equal(t, []string{"hel", "hello wor", ""}, h.interims)
}

func TestController_MixedResultBatch(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	rec.ev.OnResult(ResultEvent{Results: []Result{
		{Transcript: "first", IsFinal: true, Confidence: 0.8},
		{Transcript: " sec"},
		{Transcript: " second", IsFinal: true, Confidence: 0.7},
	}})
	assert.Equal(t, "first second", h.c.Transcript())
	assert.Equal(t, "", h.c.InterimTranscript())
	assert.Len(t, h.results, 2)

	h.c.ResetTranscript()
	assert.Equal(t, "", h.c.Transcript())
	assert.True(t, h.c.IsListening())
}

func TestController_FinalsKeepTheirSpacing(t *testing.T) {
	h := newHarness(t, func(o *Options, _ *fakeFactory) {
		o.Language = "ja"
	})
	rec := h.listen(t)

	rec.final("こんにちは")
	rec.final("世界")
	assert.Equal(t, "こんにちは世界", h.c.Transcript())

	h.c.ResetTranscript()
	rec.final("hello")
	rec.final(" world")
	assert.Equal(t, "hello world", h.c.Transcript())
}

func TestController_ScheduleRestartReplacesPendingTimer(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	h.c.post(func() {
		h.c.scheduleRestart(300 * time.Millisecond)
		h.c.scheduleRestart(700 * time.Millisecond)
	})
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, h.restarts())

	h.s.Advance(time.Second)
	assert.Equal(t, 2, rec.Starts())

	// two end events before the timer fires
	rec.ev.OnStart()
	rec.ev.OnEnd()
	rec.ev.OnEnd()
	assert.Equal(t, []time.Duration{300 * time.Millisecond}, h.restarts())
	assert.Equal(t, 2, h.ends)
}

func TestController_ScenarioNoSpeechThenHello(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	for i := 0; i < 3; i++ {
		rec.fail(ErrorNoSpeech)
		rec.ev.OnEnd()
		h.s.Advance(500 * time.Millisecond)
		rec.ev.OnStart()
	}
	rec.final("hello")

	assert.True(t, h.c.IsListening())
	assert.Equal(t, "hello", h.c.Transcript())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
	assert.Empty(t, h.errorMessages())
}

func TestController_StartFailureRecreatesHandle(t *testing.T) {
	h := newHarness(t)
	h.f.startErr = errAlreadyStarted

	h.c.StartListening()
	require.Equal(t, 2, h.f.created())
	first := h.f.recs[0]
	assert.Equal(t, 1, first.aborts)
	assert.Equal(t, StateRefreshing, h.c.State())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, h.restarts())

	h.f.startErr = nil
	second := h.f.recs[1]
	second.startErr = nil
	h.s.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, second.Starts())

	second.ev.OnStart()
	assert.True(t, h.c.IsListening())
	assert.Empty(t, h.errorMessages())
}

func TestController_RefreshStartFailuresHitCeiling(t *testing.T) {
	h := newHarness(t)
	h.f.startErr = errAlreadyStarted

	h.c.StartListening()
	for i := 0; i < 30; i++ {
		h.s.Advance(time.Second)
	}

	assert.Equal(t, []string{msgInitFailed}, h.errorMessages())
	assert.Equal(t, StateFailed, h.c.State())
	assert.Empty(t, h.s.pending())
	assert.Equal(t, 6, h.f.created())
}

func TestController_RefreshReplacesStaleHandle(t *testing.T) {
	h := newHarness(t)
	first := h.listen(t)

	h.s.Advance(refreshEvery)
	require.Equal(t, 2, h.f.created())
	assert.Equal(t, 1, first.aborts)
	assert.False(t, h.c.IsListening())

	// the old recognizer is gone, its events don't count
	first.ev.OnEnd()
	first.fail(ErrorNetwork)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, h.restarts())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
	assert.Equal(t, 0, h.ends)

	second := h.f.last()
	assert.Equal(t, "ko-KR", second.cfg.Locale)
	h.s.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, second.Starts())
	second.ev.OnStart()
	assert.True(t, h.c.IsListening())

	// the refresh loop keeps running
	assert.Equal(t, []time.Duration{refreshEvery}, h.s.pending())
}

func TestController_RefreshSkippedAfterRecentResult(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	h.s.Advance(45 * time.Second)
	rec.final("still here")
	h.s.Advance(15 * time.Second)
	assert.Equal(t, 1, h.f.created())

	h.s.Advance(refreshEvery)
	assert.Equal(t, 2, h.f.created())
}

func TestController_SpeechStartCountsAsActivity(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	h.s.Advance(50 * time.Second)
	rec.ev.OnSpeechStart()
	h.s.Advance(10 * time.Second)
	assert.Equal(t, 1, h.f.created())
}

func TestController_SetLanguage(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	h.c.SetLanguage("en")
	assert.Equal(t, "en-US", rec.Locale())
	assert.Equal(t, 1, rec.stops)

	rec.ev.OnEnd()
	require.Equal(t, []time.Duration{300 * time.Millisecond}, h.restarts())
	rec.SetLanguage("ko-KR")
	h.s.Advance(300 * time.Millisecond)
	assert.Equal(t, 2, rec.Starts())
	assert.Equal(t, "en-US", rec.Locale())

	// not listening: only remembered
	rec.fail(ErrorNoSpeech)
	h.c.SetLanguage("ja")
	assert.Equal(t, 1, rec.stops)
	h.s.Advance(500 * time.Millisecond)
	assert.Equal(t, "ja-JP", rec.Locale())
}

func TestController_ResetErrorsOnStart(t *testing.T) {
	h := newHarness(t, func(o *Options, _ *fakeFactory) {
		o.ResetErrorsOnStart = true
	})
	rec := h.listen(t)

	for i := 0; i < 8; i++ {
		rec.fail(ErrorNetwork)
		h.s.Advance(300 * time.Millisecond)
		rec.ev.OnStart()
	}
	assert.Empty(t, h.errorMessages())
	assert.Equal(t, 0, h.c.ConsecutiveErrors())
}

func TestController_StateTransitions(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)
	rec.ev.OnEnd()
	h.s.Advance(300 * time.Millisecond)
	rec.ev.OnStart()
	h.c.StopListening()

	assert.Equal(t, []State{
		StateStarting,
		StateListening,
		StatePendingRestart,
		StateStarting,
		StateListening,
		StateIdle,
	}, h.states)
}

func TestController_Close(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	h.c.Close()
	assert.Equal(t, 1, rec.aborts)
	assert.Empty(t, h.s.pending())

	h.c.StartListening()
	rec.ev.OnStart()
	assert.False(t, h.c.IsListening())
	assert.Equal(t, 1, h.f.created())
}

func TestController_CloseWaitsForQueuedEvents(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	h := newHarness(t, func(o *Options, _ *fakeFactory) {
		onInterim := o.OnInterim
		o.OnInterim = func(text string) {
			if text == "hold" {
				close(entered)
				<-release
			}
			onInterim(text)
		}
	})
	rec := h.listen(t)

	// another goroutine is busy draining the queue
	go rec.interim("hold")
	<-entered
	rec.final("queued")

	closed := make(chan struct{})
	go func() {
		h.c.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the queued final was handled")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.results, 1)
	assert.Equal(t, "queued", h.results[0].Transcript)
	assert.Equal(t, 1, rec.aborts)
}

func TestController_ConcurrentEvents(t *testing.T) {
	h := newHarness(t)
	rec := h.listen(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.final("w ")
		}()
	}
	wg.Wait()

	assert.Len(t, h.results, 50)
	assert.Len(t, strings.Fields(h.c.Transcript()), 50)
}
