package partner

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	csvimport "github.com/kellertobias/servobill-sub000/internal/infrastructure/import"
)

// CustomerImportService imports customers from CSV files. The file is
// validated as a whole first; nothing is written unless every row passes.
type CustomerImportService struct {
	customers partner.CustomerRepository
	sessions  csvimport.SessionStore
	processor *csvimport.ImportProcessor
	logger    *zap.Logger
}

// NewCustomerImportService creates a new CustomerImportService
func NewCustomerImportService(
	customers partner.CustomerRepository,
	sessions csvimport.SessionStore,
	logger *zap.Logger,
) *CustomerImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerImportService{
		customers: customers,
		sessions:  sessions,
		processor: csvimport.NewImportProcessor(),
		logger:    logger,
	}
}

// ImportSummary reports the outcome of an import run
type ImportSummary struct {
	SessionID uuid.UUID            `json:"session_id"`
	State     csvimport.ImportState `json:"state"`
	TotalRows int                  `json:"total_rows"`
	Imported  int                  `json:"imported"`
	ErrorRows int                  `json:"error_rows"`
	Errors    []csvimport.RowError `json:"errors,omitempty"`
}

// customerImportRules describes the expected CSV columns. Only name is
// mandatory; all other columns mirror the create-customer request.
func customerImportRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MaxLength(200).Build(),
		csvimport.Field("customer_number").String().MaxLength(50).Unique().Build(),
		csvimport.Field("contact_name").String().MaxLength(100).Build(),
		csvimport.Field("email").Email().Build(),
		csvimport.Field("street").String().MaxLength(200).Build(),
		csvimport.Field("zip").String().MaxLength(20).Build(),
		csvimport.Field("city").String().MaxLength(100).Build(),
		csvimport.Field("state").String().MaxLength(100).Build(),
		csvimport.Field("country_code").String().Length(2, 2).Build(),
		csvimport.Field("vat_id").String().MaxLength(50).Build(),
		csvimport.Field("notes").String().Build(),
	}
}

// Import validates the CSV and, when every row is valid, creates one customer
// per row. A file with any invalid row imports nothing.
func (s *CustomerImportService) Import(ctx context.Context, tenantID uuid.UUID, fileName string, data []byte) (*ImportSummary, error) {
	session := csvimport.NewImportSession(tenantID, uuid.Nil, csvimport.EntityCustomers, fileName, int64(len(data)))

	result, err := s.processor.Validate(ctx, session, bytes.NewReader(data), customerImportRules())
	if err != nil {
		_ = s.sessions.Save(session)
		return nil, shared.NewDomainError("IMPORT_UNREADABLE", err.Error())
	}

	if !result.IsValid() {
		_ = s.sessions.Save(session)
		return &ImportSummary{
			SessionID: session.ID,
			State:     session.State,
			TotalRows: result.TotalRows,
			ErrorRows: result.ErrorRows,
			Errors:    result.Errors,
		}, nil
	}

	session.UpdateState(csvimport.StateImporting)

	imported, importErr := s.createCustomers(ctx, tenantID, data)
	if importErr != nil {
		session.UpdateState(csvimport.StateFailed)
		_ = s.sessions.Save(session)
		return nil, importErr
	}

	session.UpdateState(csvimport.StateCompleted)
	if err := s.sessions.Save(session); err != nil {
		s.logger.Warn("failed to store import session", zap.Error(err))
	}

	s.logger.Info("customer import completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Int("imported", imported),
	)

	return &ImportSummary{
		SessionID: session.ID,
		State:     session.State,
		TotalRows: result.TotalRows,
		Imported:  imported,
	}, nil
}

// GetSession returns a stored import session for status polling
func (s *CustomerImportService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*csvimport.ImportSession, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil || session == nil || session.TenantID != tenantID {
		return nil, shared.NewDomainError("NOT_FOUND", "Import session not found")
	}
	return session, nil
}

func (s *CustomerImportService) createCustomers(ctx context.Context, tenantID uuid.UUID, data []byte) (int, error) {
	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return 0, shared.NewDomainError("IMPORT_UNREADABLE", err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return 0, shared.NewDomainError("IMPORT_UNREADABLE", err.Error())
	}

	imported := 0
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, shared.NewDomainError("IMPORT_UNREADABLE", err.Error())
		}
		if row.IsEmpty() {
			continue
		}

		customer, err := partner.NewCustomer(tenantID, row.Get("name"))
		if err != nil {
			return imported, err
		}
		if number := row.Get("customer_number"); number != "" {
			if err := customer.Update(customer.Name, number); err != nil {
				return imported, err
			}
		}
		if err := customer.SetContact(row.Get("contact_name"), row.Get("email"), false); err != nil {
			return imported, err
		}
		if err := customer.SetAddress(row.Get("street"), row.Get("zip"), row.Get("city"), row.Get("state"), row.Get("country_code")); err != nil {
			return imported, err
		}
		if err := customer.SetVatID(row.Get("vat_id")); err != nil {
			return imported, err
		}
		if notes := row.Get("notes"); notes != "" {
			customer.SetNotes(notes)
		}

		if err := s.customers.Save(ctx, customer); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}
