package csvimport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityType names a data set that can be imported from CSV
type EntityType string

const (
	EntityCustomers  EntityType = "customers"
	EntityProducts   EntityType = "products"
	EntityExpenses   EntityType = "expenses"
	EntityCategories EntityType = "categories"
)

// ImportState is the lifecycle state of an import session
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

// terminal states record a completion timestamp
func (s ImportState) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// ImportSession tracks one uploaded file through validation and import
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id"`
	UserID      uuid.UUID        `json:"user_id"`
	EntityType  EntityType       `json:"entity_type"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession opens a session in the created state
func NewImportSession(tenantID, userID uuid.UUID, entityType EntityType, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
		Errors:     make([]RowError, 0),
		Preview:    make([]map[string]any, 0),
	}
}

// UpdateState moves the session to a new state, stamping CompletedAt on
// terminal states
func (s *ImportSession) UpdateState(state ImportState) {
	now := time.Now()
	s.State = state
	s.UpdatedAt = now
	if state.terminal() {
		s.CompletedAt = &now
	}
}

// SetValidationResult copies the outcome of a validation pass into the
// session
func (s *ImportSession) SetValidationResult(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// IsValid reports whether the last validation pass found no bad rows
func (s *ImportSession) IsValid() bool {
	return s.ErrorRows == 0
}

// ImportProcessor validates CSV uploads against a set of field rules
// before any data is written
type ImportProcessor struct {
	maxFileSize     int64
	maxRows         int
	maxErrors       int
	previewRows     int
	referenceLookup func(refType, value string) (bool, error)
	uniqueLookup    func(entityType, field, value string) (bool, error)
}

// ProcessorOption configures an ImportProcessor
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize caps the accepted upload size in bytes
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) { p.maxFileSize = size }
}

// WithMaxRows caps the number of data rows per file
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxRows = rows }
}

// WithMaxErrors caps how many row errors are collected before the rest
// are only counted
func WithMaxErrors(errs int) ProcessorOption {
	return func(p *ImportProcessor) { p.maxErrors = errs }
}

// WithPreviewRows sets how many valid rows are echoed back as a preview
func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) { p.previewRows = rows }
}

// WithReferenceLookup supplies the store-backed lookup used for
// reference rules
func WithReferenceLookup(fn func(refType, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.referenceLookup = fn }
}

// WithUniqueLookup supplies the store-backed lookup used for uniqueness
// rules
func WithUniqueLookup(fn func(entityType, field, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) { p.uniqueLookup = fn }
}

// NewImportProcessor applies defaults of 10MB, 100k rows, 100 collected
// errors and a 5 row preview
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 10 * 1024 * 1024,
		maxRows:     100000,
		maxErrors:   100,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// validationRun bundles the validators and counters for one pass over a
// file
type validationRun struct {
	fields  *FieldValidator
	refs    *ReferenceValidator
	uniques *UniquenessValidator
	rules   []FieldRule

	parseErrors *ErrorCollection
	totalRows   int
	validRows   int
	errorRows   int
}

func (p *ImportProcessor) newRun(rules []FieldRule) *validationRun {
	run := &validationRun{
		fields:      NewFieldValidator(rules, p.maxErrors),
		rules:       rules,
		parseErrors: NewErrorCollection(p.maxErrors),
	}
	if p.referenceLookup != nil {
		run.refs = NewReferenceValidator(p.referenceLookup, p.maxErrors)
	}
	if p.uniqueLookup != nil {
		run.uniques = NewUniquenessValidator(p.uniqueLookup, p.maxErrors)
	}
	return run
}

// checkRow runs all configured validators and reports whether the row
// passed
func (run *validationRun) checkRow(row *Row, entityType EntityType) bool {
	ok := run.fields.ValidateRow(row)

	for _, rule := range run.rules {
		if run.refs != nil && rule.Reference != "" {
			if !run.refs.ValidateReference(row.LineNumber, rule.Column, rule.Reference, row.Get(rule.Column)) {
				ok = false
			}
		}
		if run.uniques != nil && rule.Unique {
			if !run.uniques.ValidateUnique(row.LineNumber, rule.Column, string(entityType), row.Get(rule.Column)) {
				ok = false
			}
		}
	}
	return ok
}

// collectErrors merges the errors of every validator into one capped
// collection
func (run *validationRun) collectErrors(limit int) *ErrorCollection {
	merged := NewErrorCollection(limit)
	sources := []*ErrorCollection{run.parseErrors, run.fields.Errors()}
	if run.refs != nil {
		sources = append(sources, run.refs.Errors())
	}
	if run.uniques != nil {
		sources = append(sources, run.uniques.Errors())
	}
	for _, src := range sources {
		for _, e := range src.Errors() {
			merged.Add(e)
		}
	}
	return merged
}

// Validate checks a CSV file against the field rules without importing
// anything. The session is moved to validated, failed, or cancelled.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, error) {
	session.UpdateState(StateValidating)

	if p.maxFileSize > 0 && session.FileSize > p.maxFileSize {
		session.UpdateState(StateFailed)
		return nil, ErrFileTooLarge
	}

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, err
	}

	run := p.newRun(rules)
	result := NewValidationResult(session.ID.String())

	for {
		select {
		case <-ctx.Done():
			session.UpdateState(StateCancelled)
			return nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			run.parseErrors.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			run.errorRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		run.totalRows++
		if run.totalRows > p.maxRows {
			run.parseErrors.Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			break
		}

		if !run.checkRow(row, session.EntityType) {
			run.errorRows++
			continue
		}

		run.validRows++
		if len(result.Preview) < p.previewRows {
			preview := make(map[string]any, len(row.Data))
			for k, v := range row.Data {
				preview[k] = v
			}
			result.AddPreview(preview)
		}
	}

	result.SetCounts(run.totalRows, run.validRows, run.errorRows)
	result.SetErrors(run.collectErrors(p.maxErrors))

	session.SetValidationResult(result)
	if run.errorRows > 0 {
		session.UpdateState(StateFailed)
	} else {
		session.UpdateState(StateValidated)
	}

	return result, nil
}

// SessionStore persists import sessions between the validate and import
// requests
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByTenant(tenantID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore keeps sessions in a map with a TTL. A background
// loop evicts expired sessions every five minutes.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ImportSession
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore starts the store and its eviction loop
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go store.evictLoop()
	return store
}

func (s *InMemorySessionStore) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop ends the eviction loop
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

func (s *InMemorySessionStore) expired(session *ImportSession) bool {
	return time.Since(session.CreatedAt) > s.ttl
}

func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns nil for unknown and expired sessions
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, nil
	}
	return session, nil
}

// GetByTenant returns up to limit live sessions belonging to a tenant
func (s *InMemorySessionStore) GetByTenant(tenantID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ImportSession
	for _, session := range s.sessions {
		if session.TenantID != tenantID || s.expired(session) {
			continue
		}
		result = append(result, session)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup drops every expired session
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}

var _ SessionStore = (*InMemorySessionStore)(nil)
