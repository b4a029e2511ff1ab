package csvimport

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType names the parse check applied to a non-empty cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
	TypeBool    FieldType = "bool"
	TypeUUID    FieldType = "uuid"
)

var boolLiterals = map[string]struct{}{
	"true": {}, "false": {}, "1": {}, "0": {},
	"yes": {}, "no": {}, "y": {}, "n": {},
}

// parseCell checks a single cell against a field type. dateFormat only
// matters for TypeDate.
func parseCell(value string, fieldType FieldType, dateFormat string) error {
	switch fieldType {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(dateFormat, value)
		return err
	case TypeEmail:
		_, err := mail.ParseAddress(value)
		return err
	case TypeBool:
		if _, ok := boolLiterals[strings.ToLower(value)]; ok {
			return nil
		}
		return fmt.Errorf("invalid boolean value: %s", value)
	case TypeUUID:
		_, err := uuid.Parse(value)
		return err
	default:
		return nil
	}
}

// FieldRule is the full set of checks for one CSV column
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	Unique      bool
	Reference   string // lookup type for foreign keys, e.g. "category"
	CustomFunc  func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column. The type defaults to string
// and dates default to ISO format.
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{
		Column:     column,
		Type:       TypeString,
		DateFormat: "2006-01-02",
	}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

func (b *FieldRuleBuilder) DateFormat(format string) *FieldRuleBuilder {
	b.rule.DateFormat = format
	return b
}

func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder {
	b.rule.Type = TypeUUID
	return b
}

func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Length bounds the value length from both sides
func (b *FieldRuleBuilder) Length(min, max int) *FieldRuleBuilder {
	b.rule.MinLength = min
	b.rule.MaxLength = max
	return b
}

func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Pattern adds a regex check; description is used in error messages
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique rejects a value that already appeared in the same file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

func (b *FieldRuleBuilder) Reference(refType string) *FieldRuleBuilder {
	b.rule.Reference = refType
	return b
}

func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies FieldRules row by row, collecting errors and
// tracking in-file duplicates for Unique columns.
type FieldValidator struct {
	rules  map[string]FieldRule
	seen   map[string]map[string]int // column -> value -> line first seen
	errors *ErrorCollection
}

// NewFieldValidator creates a validator over the given rules
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	byColumn := make(map[string]FieldRule, len(rules))
	for _, r := range rules {
		byColumn[r.Column] = r
	}
	return &FieldValidator{
		rules:  byColumn,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks every ruled column of the row. Empty optional cells
// pass; empty required cells fail without further checks.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true

	for column, rule := range v.rules {
		value := row.Get(column)

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, column)
				ok = false
			}
			continue
		}

		if err := parseCell(value, rule.Type, rule.DateFormat); err != nil {
			v.errors.AddTypeError(row.LineNumber, column, string(rule.Type), value)
			ok = false
			continue
		}

		if !v.checkLength(row.LineNumber, column, value, rule) {
			ok = false
		}
		if !v.checkRange(row.LineNumber, column, value, rule) {
			ok = false
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			v.errors.AddPatternError(row.LineNumber, column, rule.PatternDesc, value)
			ok = false
		}

		if rule.Unique && !v.checkUniqueInFile(row.LineNumber, column, value) {
			ok = false
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				v.errors.AddValidationError(row.LineNumber, column, ErrCodeImportValidation, err.Error())
				ok = false
			}
		}
	}

	return ok
}

func (v *FieldValidator) checkLength(line int, column, value string, rule FieldRule) bool {
	if (rule.MaxLength > 0 && len(value) > rule.MaxLength) ||
		(rule.MinLength > 0 && len(value) < rule.MinLength) {
		v.errors.AddLengthError(line, column, rule.MinLength, rule.MaxLength)
		return false
	}
	return true
}

func (v *FieldValidator) checkRange(line int, column, value string, rule FieldRule) bool {
	if rule.Type != TypeInt && rule.Type != TypeDecimal {
		return true
	}
	if rule.MinValue == nil && rule.MaxValue == nil {
		return true
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) ||
		(rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
		if rule.MinValue != nil && rule.MaxValue != nil {
			minFloat, _ := rule.MinValue.Float64()
			maxFloat, _ := rule.MaxValue.Float64()
			v.errors.AddRangeError(line, column, minFloat, maxFloat)
		}
		return false
	}
	return true
}

func (v *FieldValidator) checkUniqueInFile(line int, column, value string) bool {
	if v.seen[column] == nil {
		v.seen[column] = make(map[string]int)
	}
	if firstLine, dup := v.seen[column][value]; dup {
		v.errors.Add(NewRowErrorWithValue(line, column, ErrCodeImportDuplicateInFile,
			fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, firstLine), value))
		return false
	}
	v.seen[column][value] = line
	return true
}

// Errors returns the collected row errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset clears collected errors and duplicate tracking for reuse
func (v *FieldValidator) Reset() {
	v.seen = make(map[string]map[string]int)
	v.errors.Clear()
}

// ReferenceValidator checks that referenced entities (expense categories,
// products) exist, caching lookups so a repeated value hits the store once.
type ReferenceValidator struct {
	known  map[string]map[string]bool // refType -> value -> exists
	lookup func(refType, value string) (bool, error)
	errors *ErrorCollection
}

// NewReferenceValidator creates a reference validator around a lookup
func NewReferenceValidator(lookup func(refType, value string) (bool, error), maxErrors int) *ReferenceValidator {
	return &ReferenceValidator{
		known:  make(map[string]map[string]bool),
		lookup: lookup,
		errors: NewErrorCollection(maxErrors),
	}
}

// PreloadReferences resolves a batch of values up front
func (v *ReferenceValidator) PreloadReferences(refType string, values []string) error {
	for _, value := range values {
		exists, err := v.lookup(refType, value)
		if err != nil {
			return err
		}
		v.remember(refType, value, exists)
	}
	return nil
}

// ValidateReference checks one cell against the referenced entity type.
// Empty cells pass; reference checks only apply to filled ones.
func (v *ReferenceValidator) ValidateReference(row int, column, refType, value string) bool {
	if value == "" {
		return true
	}

	exists, cached := false, false
	if byValue := v.known[refType]; byValue != nil {
		exists, cached = byValue[value]
	}
	if !cached {
		var err error
		exists, err = v.lookup(refType, value)
		if err != nil {
			v.errors.AddValidationError(row, column, ErrCodeImportValidation,
				fmt.Sprintf("error checking %s reference: %v", refType, err))
			return false
		}
		v.remember(refType, value, exists)
	}

	if !exists {
		v.errors.AddReferenceError(row, column, value, refType)
		return false
	}
	return true
}

func (v *ReferenceValidator) remember(refType, value string, exists bool) {
	if v.known[refType] == nil {
		v.known[refType] = make(map[string]bool)
	}
	v.known[refType][value] = exists
}

// Errors returns the collected row errors
func (v *ReferenceValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset drops the lookup cache and collected errors
func (v *ReferenceValidator) Reset() {
	v.known = make(map[string]map[string]bool)
	v.errors.Clear()
}

// UniquenessValidator rejects values that already exist in the store,
// for columns that must be unique beyond the uploaded file itself.
type UniquenessValidator struct {
	lookup func(entityType, field, value string) (bool, error)
	errors *ErrorCollection
}

// NewUniquenessValidator creates a store-backed uniqueness validator
func NewUniquenessValidator(lookup func(entityType, field, value string) (bool, error), maxErrors int) *UniquenessValidator {
	return &UniquenessValidator{
		lookup: lookup,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateUnique checks one cell against existing stored values
func (v *UniquenessValidator) ValidateUnique(row int, column, entityType, value string) bool {
	if value == "" {
		return true
	}

	exists, err := v.lookup(entityType, column, value)
	if err != nil {
		v.errors.AddValidationError(row, column, ErrCodeImportValidation,
			fmt.Sprintf("error checking uniqueness: %v", err))
		return false
	}
	if exists {
		v.errors.AddDuplicateError(row, column, value, true)
		return false
	}
	return true
}

// Errors returns the collected row errors
func (v *UniquenessValidator) Errors() *ErrorCollection {
	return v.errors
}
