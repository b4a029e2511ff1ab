package finance

import (
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// Event type constants for the finance context
const (
	EventTypeExpenseCreated = "expense.created"
	EventTypeExpenseUpdated = "expense.updated"
	EventTypeExpenseDeleted = "expense.deleted"
)

const aggregateTypeExpense = "Expense"

// ExpenseCreatedEvent is published when an expense is created
type ExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	Name          string `json:"name"`
	ExpendedCents int64  `json:"expendedCents"`
}

// NewExpenseCreatedEvent creates an expense created event
func NewExpenseCreatedEvent(expense *Expense) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseCreated, aggregateTypeExpense, expense.GetID(), expense.TenantID),
		Name:            expense.Name,
		ExpendedCents:   expense.ExpendedCents,
	}
}

// ExpenseUpdatedEvent is published when an expense is updated
type ExpenseUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewExpenseUpdatedEvent creates an expense updated event
func NewExpenseUpdatedEvent(expense *Expense) *ExpenseUpdatedEvent {
	return &ExpenseUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseUpdated, aggregateTypeExpense, expense.GetID(), expense.TenantID),
		Name:            expense.Name,
	}
}
