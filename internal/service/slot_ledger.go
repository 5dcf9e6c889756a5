package service

import (
	"context"
	"sync"
	"time"

	"medassist/internal/domain/entity"
	"medassist/pkg/apperr"

	"github.com/sirupsen/logrus"
)

// SlotLedger is the single authority over which slots are locked or booked.
// Every operation on one key is an atomic check-and-set; operations on
// different keys never block each other. The interface is deliberately small
// so the same booking algorithm runs against the in-process ledger or a
// shared Redis store.
type SlotLedger interface {
	// Acquire takes a TTL-bounded advisory lock. Conflict if the key carries
	// a live lock or a booking.
	Acquire(ctx context.Context, key entity.SlotKey, holder string, ttl time.Duration) error
	// Release drops the lock only when holder matches; expired or absent
	// locks are a no-op.
	Release(ctx context.Context, key entity.SlotKey, holder string) error
	// Claim converts the holder's lock into a booking as one atomic step.
	// With requireLock false an unlocked free key may be claimed directly.
	Claim(ctx context.Context, key entity.SlotKey, holder string, requireLock bool) error
	// Free removes a booking unconditionally (cancel, reschedule source,
	// compensation after a failed DB write).
	Free(ctx context.Context, key entity.SlotKey) error
	// Occupied reports whether the key carries a live lock or a booking.
	Occupied(ctx context.Context, key entity.SlotKey) (bool, error)
}

const (
	ledgerCleanupInterval = 10 * time.Minute
	ledgerStaleThreshold  = 10 * time.Minute
)

// slotState is the per-key record. Its mutex serializes all operations on the
// key; the read of lock expiry happens under it, which makes lazy TTL expiry
// race-free.
type slotState struct {
	mu        sync.Mutex
	holder    string
	expiresAt time.Time
	booked    bool
	lastUsed  time.Time
	gone      bool // set by the janitor right before map removal
}

func (s *slotState) lockLive(now time.Time) bool {
	return s.holder != "" && now.Before(s.expiresAt)
}

func (s *slotState) empty(now time.Time) bool {
	return !s.booked && !s.lockLive(now)
}

// memorySlotLedger is the single-process implementation: one state record per
// key in a sync.Map, plus a background janitor that drops stale free records.
type memorySlotLedger struct {
	log    *logrus.Logger
	slots  sync.Map // map[string]*slotState
	now    func() time.Time
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewMemorySlotLedger(log *logrus.Logger) *memorySlotLedger {
	l := &memorySlotLedger{
		log:    log,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Stop shuts the janitor down. Safe to call multiple times.
func (l *memorySlotLedger) Stop() {
	l.once.Do(func() {
		close(l.stopCh)
		l.wg.Wait()
	})
}

// state returns the locked record for the key, retrying when the janitor
// removed the record between load and lock. Callers must unlock it.
func (l *memorySlotLedger) state(key entity.SlotKey) *slotState {
	k := key.String()
	for {
		v, _ := l.slots.LoadOrStore(k, &slotState{})
		s := v.(*slotState)
		s.mu.Lock()
		if s.gone {
			s.mu.Unlock()
			continue
		}
		s.lastUsed = l.now()
		return s
	}
}

func (l *memorySlotLedger) Acquire(ctx context.Context, key entity.SlotKey, holder string, ttl time.Duration) error {
	s := l.state(key)
	defer s.mu.Unlock()

	now := l.now()
	if s.booked {
		return apperr.Conflict("slot is already booked")
	}
	if s.lockLive(now) && s.holder != holder {
		return apperr.Conflict("slot is locked by another holder")
	}
	s.holder = holder
	s.expiresAt = now.Add(ttl)
	return nil
}

func (l *memorySlotLedger) Release(ctx context.Context, key entity.SlotKey, holder string) error {
	s := l.state(key)
	defer s.mu.Unlock()

	if s.booked {
		return nil
	}
	if s.lockLive(l.now()) && s.holder != holder {
		// Never drop someone else's live lock.
		return nil
	}
	s.holder = ""
	s.expiresAt = time.Time{}
	return nil
}

func (l *memorySlotLedger) Claim(ctx context.Context, key entity.SlotKey, holder string, requireLock bool) error {
	s := l.state(key)
	defer s.mu.Unlock()

	now := l.now()
	if s.booked {
		return apperr.Conflict("slot is already booked")
	}
	if s.lockLive(now) {
		if s.holder != holder {
			return apperr.Conflict("slot is locked by another holder")
		}
	} else if requireLock {
		return apperr.Conflict("no live lock held for slot")
	}
	s.booked = true
	s.holder = ""
	s.expiresAt = time.Time{}
	return nil
}

func (l *memorySlotLedger) Free(ctx context.Context, key entity.SlotKey) error {
	s := l.state(key)
	defer s.mu.Unlock()

	s.booked = false
	s.holder = ""
	s.expiresAt = time.Time{}
	return nil
}

func (l *memorySlotLedger) Occupied(ctx context.Context, key entity.SlotKey) (bool, error) {
	s := l.state(key)
	defer s.mu.Unlock()

	return s.booked || s.lockLive(l.now()), nil
}

func (l *memorySlotLedger) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(ledgerCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanupStale()
		}
	}
}

// cleanupStale removes records that hold neither a booking nor a live lock
// and have not been touched recently. Removal happens under the record lock
// with the gone flag set, so concurrent state() calls retry cleanly.
func (l *memorySlotLedger) cleanupStale() {
	now := l.now()
	cutoff := now.Add(-ledgerStaleThreshold)
	var cleaned int

	l.slots.Range(func(key, value any) bool {
		s, ok := value.(*slotState)
		if !ok {
			return true
		}
		if s.mu.TryLock() {
			if s.empty(now) && s.lastUsed.Before(cutoff) {
				s.gone = true
				l.slots.Delete(key)
				cleaned++
			}
			s.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale slot records", cleaned)
	}
}
