// Package notify holds the single transient notification shown to the user.
package notify

import (
	"sync"
	"time"

	"lyrify/pkg/models"
)

// DefaultDelay is how long a notification stays visible.
const DefaultDelay = 3 * time.Second

// DisplayFunc is called when a notification appears (n non-nil) or clears
// (n nil).
type DisplayFunc func(n *models.Notification)

// Slot holds at most one notification. Showing a new one replaces the
// current one immediately and re-arms the clear timer; there is no queue.
type Slot struct {
	mu      sync.Mutex
	delay   time.Duration
	display DisplayFunc
	current *models.Notification
	timer   *time.Timer
	gen     uint64
}

// NewSlot creates a slot. A zero delay keeps notifications until replaced.
func NewSlot(delay time.Duration, display DisplayFunc) *Slot {
	if display == nil {
		display = func(*models.Notification) {}
	}
	return &Slot{delay: delay, display: display}
}

// Show replaces the current notification.
func (s *Slot) Show(message string, kind models.NotificationKind) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen := s.gen
	n := &models.Notification{Message: message, Kind: kind}
	s.current = n
	if s.delay > 0 {
		s.timer = time.AfterFunc(s.delay, func() { s.expire(gen) })
	}
	s.mu.Unlock()

	s.display(n)
}

// Info, Success and Error are shorthands for Show.
func (s *Slot) Info(message string)    { s.Show(message, models.NotificationInfo) }
func (s *Slot) Success(message string) { s.Show(message, models.NotificationSuccess) }
func (s *Slot) Error(message string)   { s.Show(message, models.NotificationError) }

// Current returns the visible notification, or nil.
func (s *Slot) Current() *models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	n := *s.current
	return &n
}

// Close stops any pending clear.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire clears the slot unless a newer notification took its place.
func (s *Slot) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.timer = nil
	s.mu.Unlock()

	s.display(nil)
}
