// Package audio plays the ambient soundscape: a looping ocean surf and a
// short chime for every emote group that rises from the sea.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

// SampleRate of every generated stream.
const SampleRate = beep.SampleRate(44100)

// ChimeDuration is the length of one chime.
const ChimeDuration = 600 * time.Millisecond

// Pentatonic notes the chime cycles through, in Hz.
var chimeNotes = []float64{523.25, 587.33, 659.25, 783.99, 880.00}

// Manager mixes the surf with chimes. A nil *Manager is a valid silent manager.
type Manager struct {
	mu     sync.Mutex
	locker sync.Locker
	mixer  *beep.Mixer
	volume float64
	chimes int
	log    *logrus.Entry
}

type speakerLocker struct{}

func (speakerLocker) Lock()   { speaker.Lock() }
func (speakerLocker) Unlock() { speaker.Unlock() }

// Open initialises the speaker and starts the surf.
func Open(volume float64, seed uint64, log *logrus.Entry) (*Manager, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}

	m := NewManager(&beep.Mixer{}, speakerLocker{}, volume, seed, log)
	speaker.Play(m.mixer)
	log.WithField("volume", volume).Info("Audio started")
	return m, nil
}

// NewManager mixes into mixer, taking locker around every change to it.
// The surf is added immediately.
func NewManager(mixer *beep.Mixer, locker sync.Locker, volume float64, seed uint64, log *logrus.Entry) *Manager {
	m := &Manager{
		locker: locker,
		mixer:  mixer,
		volume: volume,
		log:    log,
	}
	m.add(NewSurf(SampleRate, seed), 0.6)
	return m
}

func (m *Manager) add(s beep.Streamer, gain float64) {
	v := m.volume * gain
	vol := &effects.Volume{
		Streamer: s,
		Base:     2,
		Silent:   v <= 0,
	}
	if v > 0 {
		vol.Volume = math.Log2(v)
	}

	m.locker.Lock()
	m.mixer.Add(vol)
	m.locker.Unlock()
}

// Chime plays the next note of the scale.
func (m *Manager) Chime() {
	if m == nil {
		return
	}
	m.mu.Lock()
	note := chimeNotes[m.chimes%len(chimeNotes)]
	m.chimes++
	m.mu.Unlock()

	m.add(NewChime(SampleRate, note, ChimeDuration), 0.35)
}

// Playing returns the number of active streams, the surf included.
func (m *Manager) Playing() int {
	if m == nil {
		return 0
	}
	m.locker.Lock()
	defer m.locker.Unlock()
	return m.mixer.Len()
}

// Close silences everything.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.locker.Lock()
	m.mixer.Clear()
	m.locker.Unlock()
	m.log.Debug("Audio stopped")
}
