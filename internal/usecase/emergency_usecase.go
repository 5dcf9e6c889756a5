package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"medassist/config"
	"medassist/internal/domain/entity"
	"medassist/internal/domain/repository"
	"medassist/internal/service"
	"medassist/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SystemActor marks transitions performed by the orchestrator itself.
const SystemActor = "system"

type OpenEmergencyInput struct {
	Assessment *entity.SeverityAssessment
	Contact    string
	Location   string
}

type EmergencyUsecase interface {
	Open(ctx context.Context, input *OpenEmergencyInput) (*entity.EmergencyCase, error)
	ProvideLocation(ctx context.Context, id uuid.UUID, location string) (*entity.EmergencyCase, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to entity.CaseStatus, actor string) (*entity.EmergencyCase, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.EmergencyCase, error)
	ListActive(ctx context.Context) []entity.EmergencyCase
	Stop()
}

// caseEntry wraps an active case with its lock. All reads and writes of the
// case go through this mutex, so a transition's validity check and the log
// append are atomic together.
type caseEntry struct {
	mu               sync.Mutex
	c                *entity.EmergencyCase
	awaitingLocation bool
	locationTimer    *time.Timer
}

// snapshot copies the case for callers so they never observe a concurrent
// mutation. Caller must hold the entry lock.
func (e *caseEntry) snapshot() *entity.EmergencyCase {
	cp := *e.c
	cp.Notes = append([]string(nil), e.c.Notes...)
	cp.Transitions = append([]entity.CaseTransition(nil), e.c.Transitions...)
	cp.Deliveries = append([]entity.ChannelDelivery(nil), e.c.Deliveries...)
	return &cp
}

// emergencyUsecase owns every active case until it reaches COMPLETED, then
// hands it to the persistence repository. Notification fan-out runs on its
// own goroutines and can never fail or block case creation.
type emergencyUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	caseRepo repository.EmergencyCaseRepository
	gateway  service.Gateway
	audit    service.AuditService
	cfg      config.EmergencyConfig

	cases    sync.Map // map[uuid.UUID]*caseEntry
	notifyWG sync.WaitGroup
	now      func() time.Time
}

func NewEmergencyUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	caseRepo repository.EmergencyCaseRepository,
	gateway service.Gateway,
	audit service.AuditService,
	cfg config.EmergencyConfig,
) EmergencyUsecase {
	if cfg.NotifyRetries <= 0 {
		cfg.NotifyRetries = 3
	}
	if cfg.NotifyBackoff <= 0 {
		cfg.NotifyBackoff = 500 * time.Millisecond
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = 2 * time.Minute
	}
	return &emergencyUsecase{
		db:       db,
		log:      log,
		caseRepo: caseRepo,
		gateway:  gateway,
		audit:    audit,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Stop waits for in-flight notification sends to run out their retry budget.
func (u *emergencyUsecase) Stop() {
	u.notifyWG.Wait()
}

// Open creates a case for an assessment that needs immediate attention. When
// no location is known yet the case idles in an awaiting-location sub-phase:
// externally it already reads as PENDING, but notification fan-out is held
// back until the location arrives or the collection timeout fires.
func (u *emergencyUsecase) Open(ctx context.Context, input *OpenEmergencyInput) (*entity.EmergencyCase, error) {
	if input == nil || input.Assessment == nil {
		return nil, apperr.Validation("assessment is required")
	}
	if !input.Assessment.NeedsImmediateAttention {
		return nil, apperr.Validation("assessment does not require an emergency case")
	}
	if input.Contact == "" {
		return nil, apperr.Validation("contact is required")
	}

	now := u.now()
	c := &entity.EmergencyCase{
		ID:        uuid.New(),
		Severity:  *input.Assessment,
		Contact:   input.Contact,
		Location:  input.Location,
		Status:    entity.CaseStatusPending,
		CreatedAt: now,
		Transitions: []entity.CaseTransition{
			{Status: entity.CaseStatusPending, Actor: SystemActor, Timestamp: now},
		},
	}

	entry := &caseEntry{c: c}
	u.cases.Store(c.ID, entry)

	entry.mu.Lock()
	if input.Location == "" {
		entry.awaitingLocation = true
		caseID := c.ID
		entry.locationTimer = time.AfterFunc(u.cfg.LocationTimeout, func() {
			u.locationTimedOut(caseID)
		})
	} else {
		u.fanOut(entry)
	}
	snapshot := entry.snapshot()
	entry.mu.Unlock()

	u.audit.Record(ctx, SystemActor, entity.AuditActionEmergencyOpen, entity.JSON{
		"case_id":    c.ID.String(),
		"severity":   string(c.Severity.Level),
		"score":      c.Severity.Score,
		"department": c.Severity.Department,
	})
	u.log.Warnf("Emergency case opened: id=%s severity=%s dept=%s awaiting_location=%v",
		c.ID, c.Severity.Level, c.Severity.Department, input.Location == "")

	return snapshot, nil
}

// ProvideLocation supplies the location collected from the conversation flow
// and collapses the awaiting-location sub-phase, firing the held-back
// notification fan-out.
func (u *emergencyUsecase) ProvideLocation(ctx context.Context, id uuid.UUID, location string) (*entity.EmergencyCase, error) {
	if location == "" {
		return nil, apperr.Validation("location is required")
	}
	entry, ok := u.loadEntry(id)
	if !ok {
		return nil, apperr.NotFound("emergency case not found")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.c.IsTerminal() {
		return nil, apperr.Conflict("emergency case is already completed")
	}

	entry.c.Location = location
	if entry.awaitingLocation {
		entry.awaitingLocation = false
		if entry.locationTimer != nil {
			entry.locationTimer.Stop()
			entry.locationTimer = nil
		}
		u.fanOut(entry)
	}
	return entry.snapshot(), nil
}

// locationTimedOut opens the case anyway with an unknown location.
func (u *emergencyUsecase) locationTimedOut(id uuid.UUID) {
	entry, ok := u.loadEntry(id)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.awaitingLocation {
		return
	}
	entry.awaitingLocation = false
	entry.locationTimer = nil
	entry.c.Location = entity.LocationUnknown
	entry.c.AddNote("location not provided before collection timeout")
	u.log.Warnf("Emergency case %s: location collection timed out", id)
	u.fanOut(entry)
}

// UpdateStatus applies a staff transition. Re-applying the current status is
// a no-op; anything outside the transition table is a conflict and leaves the
// case untouched.
func (u *emergencyUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, to entity.CaseStatus, actor string) (*entity.EmergencyCase, error) {
	if actor == "" {
		return nil, apperr.Validation("actor is required")
	}
	switch to {
	case entity.CaseStatusPending, entity.CaseStatusDispatched, entity.CaseStatusArrived, entity.CaseStatusCompleted:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown case status %q", to))
	}

	entry, ok := u.loadEntry(id)
	if !ok {
		return nil, apperr.NotFound("emergency case not found")
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	c := entry.c
	if c.Status == to {
		// Two staff members racing to the same transition is expected;
		// the second application is a clean no-op.
		return entry.snapshot(), nil
	}
	if !c.CanTransition(to) {
		return nil, apperr.Conflict(fmt.Sprintf("invalid transition %s -> %s", c.Status, to))
	}
	if to == entity.CaseStatusDispatched && c.Location == "" {
		return nil, apperr.Conflict("location must be collected before dispatch")
	}

	c.ApplyTransition(to, actor, u.now())
	if entry.locationTimer != nil && c.IsTerminal() {
		entry.locationTimer.Stop()
		entry.locationTimer = nil
		entry.awaitingLocation = false
	}

	u.audit.Record(ctx, actor, entity.AuditActionEmergencyUpdate, entity.JSON{
		"case_id": id.String(),
		"status":  string(to),
	})

	if c.IsTerminal() {
		u.handOff(ctx, entry)
	}
	return entry.snapshot(), nil
}

// handOff persists the finished case and drops it from the active registry.
// Caller must hold the entry lock.
func (u *emergencyUsecase) handOff(ctx context.Context, entry *caseEntry) {
	record := entry.c.ToRecord()
	if err := u.caseRepo.SaveTerminal(u.db.WithContext(ctx), record); err != nil {
		// Keep the case in the registry so the record is not lost; it no
		// longer shows up in ListActive either way.
		u.log.Errorf("Failed to persist completed emergency case %s: %+v", entry.c.ID, err)
		return
	}
	u.cases.Delete(entry.c.ID)
	u.log.Infof("Emergency case completed and persisted: id=%s", entry.c.ID)
}

// Get serves active cases from the registry and falls back to the durable
// store for cases that already completed and were handed off.
func (u *emergencyUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.EmergencyCase, error) {
	entry, ok := u.loadEntry(id)
	if ok {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return entry.snapshot(), nil
	}

	record, err := u.caseRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to look up emergency case %s: %+v", id, err)
		return nil, err
	}
	if record == nil {
		return nil, apperr.NotFound("emergency case not found")
	}
	return record.ToCase(), nil
}

// ListActive returns every case that has not reached COMPLETED, newest first.
func (u *emergencyUsecase) ListActive(ctx context.Context) []entity.EmergencyCase {
	var active []entity.EmergencyCase
	u.cases.Range(func(_, value any) bool {
		entry := value.(*caseEntry)
		entry.mu.Lock()
		if !entry.c.IsTerminal() {
			active = append(active, *entry.snapshot())
		}
		entry.mu.Unlock()
		return true
	})
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active
}

func (u *emergencyUsecase) loadEntry(id uuid.UUID) (*caseEntry, bool) {
	v, ok := u.cases.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*caseEntry), true
}

// fanOut dispatches the staff alert to every configured channel concurrently.
// Each channel gets its own timeout, retry budget, and backoff; a dead
// channel only ever costs its own goroutine. Caller must hold the entry lock
// (only for reading the case; sends happen outside it).
func (u *emergencyUsecase) fanOut(entry *caseEntry) {
	n := &service.Notification{
		CaseID:     entry.c.ID,
		Severity:   string(entry.c.Severity.Level),
		Department: entry.c.Severity.Department,
		Subject:    fmt.Sprintf("EMERGENCY %s - case %s", entry.c.Severity.Level, entry.c.ID),
		Message:    buildEscalationMessage(entry.c),
	}

	for _, name := range u.cfg.Channels {
		channel := service.Channel(name)
		target := u.targetFor(channel, entry.c)
		u.notifyWG.Add(1)
		go u.deliver(entry, channel, target, n)
	}
}

// deliver runs one channel send to success or retry exhaustion and records
// the outcome on the case. The triggering operation has long since returned.
func (u *emergencyUsecase) deliver(entry *caseEntry, channel service.Channel, target string, n *service.Notification) {
	defer u.notifyWG.Done()

	var lastErr error
	attempts := 0
	backoff := u.cfg.NotifyBackoff

	for attempts < u.cfg.NotifyRetries {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), u.cfg.NotifyTimeout)
		lastErr = u.gateway.Send(ctx, channel, target, n)
		cancel()
		if lastErr == nil {
			break
		}
		u.log.Warnf("Notification attempt %d/%d failed: channel=%s case=%s: %+v",
			attempts, u.cfg.NotifyRetries, channel, n.CaseID, lastErr)
		if attempts < u.cfg.NotifyRetries {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	delivery := entity.ChannelDelivery{
		Channel:    string(channel),
		Target:     target,
		Attempts:   attempts,
		Delivered:  lastErr == nil,
		FinishedAt: u.now(),
	}
	if lastErr != nil {
		delivery.LastError = apperr.Dependency(fmt.Sprintf("channel %s exhausted retries", channel), lastErr).Error()
		u.log.Errorf("Notification channel %s failed for case %s after %d attempts: %+v",
			channel, n.CaseID, attempts, lastErr)
	}

	entry.mu.Lock()
	entry.c.Deliveries = append(entry.c.Deliveries, delivery)
	entry.mu.Unlock()
}

func (u *emergencyUsecase) targetFor(channel service.Channel, c *entity.EmergencyCase) string {
	switch channel {
	case service.ChannelSMS:
		return u.cfg.StaffPhone
	case service.ChannelWhatsApp:
		return u.cfg.WhatsAppNumber
	case service.ChannelEmail:
		return u.cfg.StaffEmail
	default:
		return c.Severity.Department
	}
}

func buildEscalationMessage(c *entity.EmergencyCase) string {
	location := c.Location
	if location == "" {
		location = entity.LocationUnknown
	}
	ambulance := "No"
	if c.Severity.NeedsAmbulance {
		ambulance = "YES"
	}
	return fmt.Sprintf(
		"EMERGENCY ALERT - Case %s\nSeverity: %s (score %.3f)\nSymptoms: %s\nDepartment: %s\nContact: %s\nLocation: %s\nAmbulance required: %s\nTime: %s",
		c.ID,
		c.Severity.Level,
		c.Severity.Score,
		joinOrDash(c.Severity.MatchedSymptoms),
		c.Severity.Department,
		c.Contact,
		location,
		ambulance,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	out := items[0]
	for _, s := range items[1:] {
		out += ", " + s
	}
	return out
}
