// Package capture keeps a streaming speech recognizer running for as long as
// the caller wants it to, restarting it after silences and transient failures
// and replacing it when it goes quiet for too long.
//
// All state changes are serialized through a single event queue. Public
// methods, recognizer events and timer callbacks only enqueue work; whichever
// goroutine finds the queue idle drains it. Caller callbacks run on that
// draining goroutine and may call back into the Controller.
package capture

import (
	"strings"
	"sync"
	"time"

	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Language is a short code such as "ko", see languages.Locale.
	Language       string
	Continuous     bool
	InterimResults bool
	// ResetErrorsOnStart clears the consecutive error count on every
	// recognizer start. Off by default so that a backend which starts and
	// then fails keeps counting towards MaxConsecutiveErrors.
	ResetErrorsOnStart bool
	Timing             Timing

	OnResult      func(Result)
	OnError       func(message string)
	OnEnd         func()
	OnInterim     func(text string)
	OnStateChange func(State)
}

type Controller struct {
	factory   RecognizerFactory
	opts      Options
	timing    Timing
	sched     Scheduler
	logger    *logrus.Entry
	supported bool

	qmu      sync.Mutex
	queue    []func()
	draining bool

	// owned by the draining goroutine
	desired      bool
	restarting   bool
	errorCount   int
	lastSuccess  time.Time
	language     string
	handle       Recognizer
	handleSeq    uint64
	restartTimer Timer
	restartGen   uint64
	refreshTimer Timer
	refreshGen   uint64
	closed       bool

	mu          sync.RWMutex
	listening   bool
	state       State
	transcript  string
	interim     string
	errorsShown int
}

func NewController(factory RecognizerFactory, opts Options, sched Scheduler, logger *logrus.Logger) *Controller {
	if sched == nil {
		sched = NewScheduler(nil)
	}
	return &Controller{
		factory:   factory,
		opts:      opts,
		timing:    opts.Timing.withDefaults(),
		sched:     sched,
		logger:    logger.WithField("service", "capture"),
		supported: factory != nil && factory.Supported(),
		language:  opts.Language,
		state:     StateIdle,
	}
}

// StartListening begins a capture session. Failures are reported through
// Options.OnError.
func (c *Controller) StartListening() {
	c.post(c.startListening)
}

// StopListening ends the capture session. Pending restarts are cancelled.
func (c *Controller) StopListening() {
	c.post(c.stopListening)
}

// ResetTranscript clears the accumulated and interim text only.
func (c *Controller) ResetTranscript() {
	c.post(func() {
		c.mu.Lock()
		c.transcript = ""
		c.interim = ""
		c.mu.Unlock()
		c.notifyInterim("")
	})
}

// SetLanguage switches the recognition language. A running recognizer is
// stopped so that the restart picks up the new locale.
func (c *Controller) SetLanguage(code string) {
	c.post(func() {
		if c.language == code {
			return
		}
		c.language = code
		if c.handle == nil || !c.IsListening() {
			return
		}
		c.handle.SetLanguage(languages.Locale(code))
		if err := c.handle.Stop(); err != nil {
			c.logger.WithError(err).Debugln("stop for language change failed")
		}
	})
}

// Close stops capturing and releases the recognizer. The Controller can't be
// used afterwards. Close returns once every event queued before it has been
// handled, so it must not be called from an Options callback.
func (c *Controller) Close() {
	done := make(chan struct{})
	c.post(func() {
		defer close(done)
		if c.closed {
			return
		}
		c.stopListening()
		c.dropHandle()
		c.closed = true
	})
	<-done
}

func (c *Controller) IsSupported() bool {
	return c.supported
}

func (c *Controller) IsListening() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listening
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Transcript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript
}

func (c *Controller) InterimTranscript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interim
}

func (c *Controller) ConsecutiveErrors() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errorsShown
}

func (c *Controller) post(fn func()) {
	c.qmu.Lock()
	c.queue = append(c.queue, fn)
	if c.draining {
		c.qmu.Unlock()
		return
	}
	c.draining = true
	c.qmu.Unlock()

	for {
		c.qmu.Lock()
		if len(c.queue) == 0 {
			c.draining = false
			c.qmu.Unlock()
			return
		}
		next := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.qmu.Unlock()

		next()
	}
}

func (c *Controller) startListening() {
	if c.closed {
		return
	}
	if !c.supported {
		c.setListening(false)
		c.setState(StateFailed)
		c.reportError(msgNotSupported)
		return
	}

	c.desired = true
	c.restarting = false
	c.cancelRestart()
	c.setErrorCount(0)
	c.lastSuccess = c.sched.Now()

	if c.handle == nil {
		if err := c.newHandle(); err != nil {
			c.logger.WithError(err).Errorln("failed to create recognizer")
			c.fail(msgInitFailed)
			return
		}
	}

	switch c.State() {
	case StateListening, StateStarting:
		// already running, only make sure the refresh loop is armed
	default:
		c.setState(StateStarting)
		c.handle.SetLanguage(languages.Locale(c.language))
		if err := c.handle.Start(); err != nil {
			c.logger.WithError(err).Warnln("recognizer start failed, recreating it")
			c.refresh()
		}
	}
	c.armRefresh()
}

func (c *Controller) stopListening() {
	c.desired = false
	c.restarting = false
	c.cancelRestart()
	c.cancelRefresh()

	c.mu.Lock()
	c.interim = ""
	c.mu.Unlock()
	c.notifyInterim("")

	if c.handle != nil {
		if err := c.handle.Stop(); err != nil {
			c.logger.WithError(err).Debugln("recognizer was already stopped")
		}
	}
	c.setListening(false)
	c.setState(StateIdle)
}

func (c *Controller) newHandle() error {
	c.handleSeq++
	seq := c.handleSeq
	cfg := RecognizerConfig{
		Continuous:      c.opts.Continuous,
		InterimResults:  c.opts.InterimResults,
		MaxAlternatives: 1,
		Locale:          languages.Locale(c.language),
	}

	h, err := c.factory.NewRecognizer(cfg, c.eventsFor(seq))
	if err != nil {
		return err
	}
	c.handle = h
	return nil
}

// dropHandle aborts the current recognizer and makes its events stale.
func (c *Controller) dropHandle() {
	old := c.handle
	c.handle = nil
	c.handleSeq++
	c.setListening(false)
	if old != nil {
		if err := old.Abort(); err != nil {
			c.logger.WithError(err).Debugln("abort of old recognizer failed")
		}
	}
}

// refresh replaces the recognizer and starts the new one shortly after.
func (c *Controller) refresh() {
	c.setState(StateRefreshing)
	c.cancelRestart()
	c.dropHandle()

	if err := c.newHandle(); err != nil {
		c.logger.WithError(err).Errorln("failed to recreate recognizer")
		c.fail(msgInitFailed)
		return
	}
	if !c.desired {
		c.restarting = false
		c.setState(StateIdle)
		return
	}
	c.restarting = true
	c.armRestart(c.timing.RefreshStartDelay, true)
}

func (c *Controller) scheduleRestart(delay time.Duration) {
	if !c.desired {
		return
	}
	c.restarting = true
	c.setState(StatePendingRestart)
	c.armRestart(delay, false)
	c.logger.Debugf("restart scheduled in %s", delay)
}

func (c *Controller) armRestart(delay time.Duration, afterRefresh bool) {
	c.cancelRestart()
	gen := c.restartGen
	c.restartTimer = c.sched.AfterFunc(delay, func() {
		c.post(func() { c.restartFired(gen, afterRefresh) })
	})
}

func (c *Controller) cancelRestart() {
	if c.restartTimer != nil {
		c.restartTimer.Stop()
		c.restartTimer = nil
	}
	// a callback already queued by the old timer becomes stale
	c.restartGen++
}

func (c *Controller) restartFired(gen uint64, afterRefresh bool) {
	if gen != c.restartGen {
		return
	}
	c.restartTimer = nil
	if !c.desired {
		c.restarting = false
		return
	}
	if c.handle == nil {
		c.refresh()
		return
	}

	c.setState(StateStarting)
	c.handle.SetLanguage(languages.Locale(c.language))
	err := c.handle.Start()
	if err == nil {
		return
	}

	if !afterRefresh {
		c.logger.WithError(err).Warnln("restart failed, recreating recognizer")
		c.refresh()
		return
	}

	// a fresh recognizer could not start either, count it like a
	// network failure so this can't loop forever
	c.logger.WithError(err).Warnln("recreated recognizer failed to start")
	count := c.errorCount + 1
	c.setErrorCount(count)
	if count >= c.timing.MaxConsecutiveErrors {
		c.fail(msgInitFailed)
		return
	}
	c.scheduleRestart(c.timing.Backoff(count - 1))
}

func (c *Controller) armRefresh() {
	c.cancelRefresh()
	if !c.desired {
		return
	}
	gen := c.refreshGen
	c.refreshTimer = c.sched.AfterFunc(c.timing.RefreshInterval, func() {
		c.post(func() { c.refreshFired(gen) })
	})
}

func (c *Controller) cancelRefresh() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.refreshGen++
}

func (c *Controller) refreshFired(gen uint64) {
	if gen != c.refreshGen {
		return
	}
	c.refreshTimer = nil
	if !c.desired {
		return
	}

	if idle := c.sched.Now().Sub(c.lastSuccess); idle > c.timing.StaleAfter {
		c.logger.Infof("no result for %s, recreating recognizer", idle.Round(time.Second))
		c.refresh()
	}
	c.armRefresh()
}

func (c *Controller) eventsFor(seq uint64) Events {
	return Events{
		OnStart: func() {
			c.post(func() { c.onStart(seq) })
		},
		OnEnd: func() {
			c.post(func() { c.onEnd(seq) })
		},
		OnAudioStart: func() {
			c.post(func() {
				if c.current(seq) {
					c.logger.Debugln("audio capture started")
				}
			})
		},
		OnSpeechStart: func() {
			c.post(func() {
				if c.current(seq) {
					c.lastSuccess = c.sched.Now()
				}
			})
		},
		OnResult: func(ev ResultEvent) {
			c.post(func() { c.onResult(seq, ev) })
		},
		OnError: func(e RecognitionError) {
			c.post(func() { c.onError(seq, e) })
		},
	}
}

func (c *Controller) current(seq uint64) bool {
	return !c.closed && seq == c.handleSeq
}

func (c *Controller) onStart(seq uint64) {
	if !c.current(seq) {
		return
	}
	if !c.desired {
		// started after a stop request
		if err := c.handle.Stop(); err != nil {
			c.logger.WithError(err).Debugln("failed to stop late recognizer")
		}
		return
	}

	c.restarting = false
	if c.opts.ResetErrorsOnStart {
		c.setErrorCount(0)
	}
	c.setListening(true)
	c.setState(StateListening)
}

func (c *Controller) onEnd(seq uint64) {
	if !c.current(seq) {
		return
	}
	c.setListening(false)
	if c.opts.OnEnd != nil {
		c.opts.OnEnd()
	}

	switch {
	case c.desired && !c.restarting:
		c.scheduleRestart(c.timing.RestartDelay)
	case !c.desired && c.State() != StateFailed:
		c.setState(StateIdle)
	}
}

func (c *Controller) onResult(seq uint64, ev ResultEvent) {
	if !c.current(seq) {
		return
	}

	var finals []string
	var interim strings.Builder
	for _, r := range ev.Results {
		if !r.IsFinal {
			interim.WriteString(r.Transcript)
			continue
		}

		c.setErrorCount(0)
		c.lastSuccess = c.sched.Now()
		finals = append(finals, r.Transcript)
		if c.opts.OnResult != nil {
			c.opts.OnResult(Result{Transcript: r.Transcript, Confidence: r.Confidence, IsFinal: true})
		}
	}

	text := interim.String()
	c.mu.Lock()
	if len(finals) > 0 {
		text = ""
		// fragments carry their own spacing, languages like ja and zh have none
		for _, f := range finals {
			c.transcript += f
		}
	}
	changed := c.interim != text
	c.interim = text
	c.mu.Unlock()

	if changed {
		c.notifyInterim(text)
	}
}

func (c *Controller) onError(seq uint64, e RecognitionError) {
	if !c.current(seq) {
		return
	}
	log := c.logger.WithField("code", e.Code)

	switch e.Code {
	case ErrorNoSpeech:
		if c.desired {
			c.scheduleRestart(c.timing.NoSpeechRestartDelay)
		}

	case ErrorAborted:
		// we asked for it

	case ErrorNetwork:
		count := c.errorCount + 1
		c.setErrorCount(count)
		if count >= c.timing.MaxConsecutiveErrors {
			log.Warnf("giving up after %d consecutive network errors", count)
			c.fail(msgNetworkExhausted)
			return
		}
		if c.desired {
			delay := c.timing.Backoff(count - 1)
			log.Infof("network error, retrying in %s", delay)
			c.scheduleRestart(delay)
		}

	case ErrorAudioCapture:
		count := c.errorCount + 1
		c.setErrorCount(count)
		if count >= c.timing.MaxConsecutiveErrors {
			log.Warnf("giving up after %d consecutive audio capture errors", count)
			c.fail(msgCheckMicrophone)
			return
		}
		if c.desired {
			c.scheduleRestart(c.timing.AudioCaptureRestartDelay)
		}

	default:
		log.WithError(e).Errorln("recognition failed")
		c.fail(ErrorMessage(e.Code))
	}
}

// fail abandons the session and reports message to the caller.
func (c *Controller) fail(message string) {
	c.desired = false
	c.restarting = false
	c.cancelRestart()
	c.cancelRefresh()
	c.setListening(false)
	c.setState(StateFailed)
	c.reportError(message)
}

func (c *Controller) reportError(message string) {
	if c.opts.OnError != nil {
		c.opts.OnError(message)
	}
}

func (c *Controller) notifyInterim(text string) {
	if c.opts.OnInterim != nil {
		c.opts.OnInterim(text)
	}
}

func (c *Controller) setErrorCount(n int) {
	c.errorCount = n
	c.mu.Lock()
	c.errorsShown = n
	c.mu.Unlock()
}

func (c *Controller) setListening(v bool) {
	c.mu.Lock()
	c.listening = v
	c.mu.Unlock()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if changed && c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}
