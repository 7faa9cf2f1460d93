package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/credvet/credvet/internal/model"
)

var (
	// ErrRecordNotFound is returned for unknown or deleted record identifiers.
	ErrRecordNotFound = errors.New("verification record not found")

	// ErrRecordSuperseded is returned when a writer tries to commit a result
	// against a record that already reached a terminal or different state.
	ErrRecordSuperseded = errors.New("verification record superseded")
)

// RecordStore holds verification records and enforces the lifecycle:
// pending -> processing -> {completed | failed}. Every transition checks the
// current status, so a late-arriving writer can never corrupt a record that
// was deleted or already finished.
type RecordStore interface {
	Create(record *model.VerificationRecord) error
	Get(id string) (*model.VerificationRecord, error)
	List() []*model.VerificationRecord
	Delete(id string) error

	// MarkProcessing transitions pending -> processing.
	MarkProcessing(id string) error
	// Complete commits the final record, valid only while processing.
	Complete(record *model.VerificationRecord) error
	// Fail transitions processing (or pending) -> failed with a diagnostic.
	Fail(id string, message string) error
}

// MemoryStore is the in-memory RecordStore used by the CLI and tests. Records
// are copied on the way in and out so callers never share mutable state with
// the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.VerificationRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.VerificationRecord),
	}
}

// Create stores a new record. The record must not already exist.
func (s *MemoryStore) Create(record *model.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return errors.New("verification record already exists: " + record.ID)
	}
	s.records[record.ID] = copyRecord(record)
	return nil
}

// Get returns a copy of the record.
func (s *MemoryStore) Get(id string) (*model.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyRecord(record), nil
}

// List returns copies of all records.
func (s *MemoryStore) List() []*model.VerificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*model.VerificationRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, copyRecord(record))
	}
	return records
}

// Delete removes a record. In-flight runs against it will fail their commit
// with ErrRecordNotFound and abandon their results.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

// MarkProcessing transitions pending -> processing.
func (s *MemoryStore) MarkProcessing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if record.Status != model.StatusPending {
		return ErrRecordSuperseded
	}
	record.Status = model.StatusProcessing
	return nil
}

// Complete commits a finished record if it is still processing.
func (s *MemoryStore) Complete(record *model.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.ID]
	if !ok {
		return ErrRecordNotFound
	}
	if current.Status != model.StatusProcessing {
		return ErrRecordSuperseded
	}

	committed := copyRecord(record)
	committed.Status = model.StatusCompleted
	if committed.CompletedAt == nil {
		now := time.Now()
		committed.CompletedAt = &now
	}
	s.records[record.ID] = committed
	return nil
}

// Fail marks a record failed with a diagnostic message.
func (s *MemoryStore) Fail(id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return ErrRecordNotFound
	}
	if record.Status.Terminal() {
		return ErrRecordSuperseded
	}

	record.Status = model.StatusFailed
	record.Error = message
	now := time.Now()
	record.CompletedAt = &now
	return nil
}

func copyRecord(record *model.VerificationRecord) *model.VerificationRecord {
	clone := *record
	if record.Timestamp != nil {
		ts := *record.Timestamp
		clone.Timestamp = &ts
	}
	if record.CompletedAt != nil {
		at := *record.CompletedAt
		clone.CompletedAt = &at
	}
	if record.Proofs.Degree != nil {
		degree := *record.Proofs.Degree
		clone.Proofs.Degree = &degree
	}
	if record.Proofs.Institution != nil {
		institution := *record.Proofs.Institution
		clone.Proofs.Institution = &institution
	}
	return &clone
}
