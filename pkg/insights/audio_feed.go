package insights

import "sync"

// AudioFeed forwards PCM frames to the recognizer currently attached to it.
// Frames written while nothing is attached are dropped.
type AudioFeed struct {
	mu      sync.Mutex
	seq     uint64
	sink    func([]byte) error
	dropped int
}

func NewAudioFeed() *AudioFeed {
	return &AudioFeed{}
}

// Attach makes sink the receiver of all frames. The returned detach func only
// has an effect while sink is still the attached one.
func (f *AudioFeed) Attach(sink func([]byte) error) (detach func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	seq := f.seq
	f.sink = sink

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.seq == seq {
			f.sink = nil
		}
	}
}

func (f *AudioFeed) Write(p []byte) (int, error) {
	f.mu.Lock()
	sink := f.sink
	if sink == nil {
		f.dropped += len(p)
	}
	f.mu.Unlock()

	if sink == nil {
		return len(p), nil
	}
	if err := sink(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Dropped returns the number of bytes written without a receiver.
func (f *AudioFeed) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}
