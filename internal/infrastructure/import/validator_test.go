package csvimport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldRuleBuilder(t *testing.T) {
	t.Run("Build complete rule", func(t *testing.T) {
		minVal := decimal.NewFromInt(0)
		maxVal := decimal.NewFromInt(1000)

		rule := Field("amount").
			Required().
			Decimal().
			MinValue(minVal).
			MaxValue(maxVal).
			Unique().
			Reference("category").
			Build()

		assert.Equal(t, "amount", rule.Column)
		assert.True(t, rule.Required)
		assert.Equal(t, TypeDecimal, rule.Type)
		assert.Equal(t, &minVal, rule.MinValue)
		assert.Equal(t, &maxVal, rule.MaxValue)
		assert.True(t, rule.Unique)
		assert.Equal(t, "category", rule.Reference)
	})

	t.Run("String field with length bounds", func(t *testing.T) {
		rule := Field("customer_number").
			Required().
			String().
			MinLength(1).
			MaxLength(50).
			Build()

		assert.Equal(t, TypeString, rule.Type)
		assert.Equal(t, 1, rule.MinLength)
		assert.Equal(t, 50, rule.MaxLength)
	})

	t.Run("Pattern rule", func(t *testing.T) {
		rule := Field("vat_id").
			Pattern(`^[A-Z]{2}[\dA-Z]+$`, "VAT identifier").
			Build()

		assert.NotNil(t, rule.Pattern)
		assert.Equal(t, "VAT identifier", rule.PatternDesc)
	})

	t.Run("Date with custom format", func(t *testing.T) {
		rule := Field("expended_at").
			Date().
			DateFormat("02.01.2006").
			Build()

		assert.Equal(t, TypeDate, rule.Type)
		assert.Equal(t, "02.01.2006", rule.DateFormat)
	})

	t.Run("Every type setter", func(t *testing.T) {
		for _, tc := range []struct {
			name     string
			builder  *FieldRuleBuilder
			expected FieldType
		}{
			{"string", Field("f").String(), TypeString},
			{"int", Field("f").Int(), TypeInt},
			{"decimal", Field("f").Decimal(), TypeDecimal},
			{"date", Field("f").Date(), TypeDate},
			{"email", Field("f").Email(), TypeEmail},
			{"bool", Field("f").Bool(), TypeBool},
			{"uuid", Field("f").UUID(), TypeUUID},
		} {
			t.Run(tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, tc.builder.Build().Type)
			})
		}
	})

	t.Run("Custom function", func(t *testing.T) {
		rule := Field("custom").Custom(func(string) error { return nil }).Build()
		assert.NotNil(t, rule.CustomFunc)
	})
}

func row(line int, data map[string]string) *Row {
	return &Row{LineNumber: line, Data: data}
}

func TestFieldValidatorRequired(t *testing.T) {
	rules := []FieldRule{
		Field("customer_number").Required().Build(),
		Field("name").Required().Build(),
		Field("notes").Build(),
	}
	v := NewFieldValidator(rules, 10)

	assert.True(t, v.ValidateRow(row(2, map[string]string{
		"customer_number": "C-001", "name": "ACME", "notes": "",
	})))

	assert.False(t, v.ValidateRow(row(3, map[string]string{
		"customer_number": "", "name": "ACME",
	})))

	errs := v.Errors().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeImportRequiredField, errs[0].Code)
	assert.Equal(t, "customer_number", errs[0].Column)
}

func TestFieldValidatorTypes(t *testing.T) {
	cases := []struct {
		name    string
		rule    FieldRule
		valid   []string
		invalid []string
	}{
		{
			name:    "int",
			rule:    Field("quantity").Int().Build(),
			valid:   []string{"100", "-7"},
			invalid: []string{"abc", "1.5"},
		},
		{
			name:    "decimal",
			rule:    Field("amount").Decimal().Build(),
			valid:   []string{"100.50", "0.01", "-50.00", "1000000.999"},
			invalid: []string{"not-a-number"},
		},
		{
			name:    "date",
			rule:    Field("expended_at").Date().DateFormat("2006-01-02").Build(),
			valid:   []string{"2024-12-31"},
			invalid: []string{"31/12/2024"},
		},
		{
			name:    "email",
			rule:    Field("email").Email().Build(),
			valid:   []string{"billing@acme.test"},
			invalid: []string{"not-an-email"},
		},
		{
			name:    "bool",
			rule:    Field("active").Bool().Build(),
			valid:   []string{"true", "false", "1", "0", "yes", "no", "y", "n", "TRUE", "FALSE"},
			invalid: []string{"maybe"},
		},
		{
			name:    "uuid",
			rule:    Field("id").UUID().Build(),
			valid:   []string{"550e8400-e29b-41d4-a716-446655440000"},
			invalid: []string{"not-a-uuid", "550e8400-e29b-41d4"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewFieldValidator([]FieldRule{tc.rule}, 10)
			for _, val := range tc.valid {
				v.Reset()
				assert.True(t, v.ValidateRow(row(2, map[string]string{tc.rule.Column: val})),
					"should accept %q", val)
			}
			for _, val := range tc.invalid {
				v.Reset()
				assert.False(t, v.ValidateRow(row(2, map[string]string{tc.rule.Column: val})),
					"should reject %q", val)
			}
		})
	}
}

func TestFieldValidatorBounds(t *testing.T) {
	t.Run("Length", func(t *testing.T) {
		rules := []FieldRule{Field("country_code").MinLength(2).MaxLength(2).Build()}
		v := NewFieldValidator(rules, 10)

		assert.False(t, v.ValidateRow(row(2, map[string]string{"country_code": "D"})))
		v.Reset()
		assert.False(t, v.ValidateRow(row(3, map[string]string{"country_code": "DEU"})))
		v.Reset()
		assert.True(t, v.ValidateRow(row(4, map[string]string{"country_code": "DE"})))
	})

	t.Run("Numeric range", func(t *testing.T) {
		rules := []FieldRule{
			Field("tax_percentage").Decimal().
				Range(decimal.NewFromInt(0), decimal.NewFromInt(100)).Build(),
		}
		v := NewFieldValidator(rules, 10)

		assert.False(t, v.ValidateRow(row(2, map[string]string{"tax_percentage": "-1"})))
		v.Reset()
		assert.False(t, v.ValidateRow(row(3, map[string]string{"tax_percentage": "101"})))
		v.Reset()
		assert.True(t, v.ValidateRow(row(4, map[string]string{"tax_percentage": "19"})))
	})

	t.Run("Pattern", func(t *testing.T) {
		rules := []FieldRule{Field("vat_id").Pattern(`^[A-Z]{2}[\dA-Z]+$`, "VAT identifier").Build()}
		v := NewFieldValidator(rules, 10)

		assert.True(t, v.ValidateRow(row(2, map[string]string{"vat_id": "DE123456789"})))
		assert.False(t, v.ValidateRow(row(3, map[string]string{"vat_id": "123456789"})))
	})
}

func TestFieldValidatorUniqueInFile(t *testing.T) {
	rules := []FieldRule{Field("customer_number").Unique().Build()}
	v := NewFieldValidator(rules, 10)

	assert.True(t, v.ValidateRow(row(2, map[string]string{"customer_number": "C-001"})))
	assert.True(t, v.ValidateRow(row(3, map[string]string{"customer_number": "C-002"})))
	assert.False(t, v.ValidateRow(row(4, map[string]string{"customer_number": "C-001"})))

	var dup *RowError
	for _, err := range v.Errors().Errors() {
		if err.Code == ErrCodeImportDuplicateInFile {
			e := err
			dup = &e
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, 4, dup.Row)
}

func TestFieldValidatorCustomAndEmpty(t *testing.T) {
	t.Run("Custom function", func(t *testing.T) {
		mustStartWithC := func(value string) error {
			if value != "" && value[0] != 'C' {
				return assert.AnError
			}
			return nil
		}
		v := NewFieldValidator([]FieldRule{Field("customer_number").Custom(mustStartWithC).Build()}, 10)

		assert.True(t, v.ValidateRow(row(2, map[string]string{"customer_number": "C-001"})))
		assert.False(t, v.ValidateRow(row(3, map[string]string{"customer_number": "X-001"})))
	})

	t.Run("Empty optional cells skip all checks", func(t *testing.T) {
		v := NewFieldValidator([]FieldRule{Field("email").Email().Build()}, 10)
		assert.True(t, v.ValidateRow(row(2, map[string]string{"email": ""})))
	})

	t.Run("Reset clears duplicate tracking", func(t *testing.T) {
		v := NewFieldValidator([]FieldRule{Field("customer_number").Unique().Build()}, 10)

		v.ValidateRow(row(2, map[string]string{"customer_number": "C-001"}))
		v.Reset()
		assert.True(t, v.ValidateRow(row(3, map[string]string{"customer_number": "C-001"})))
	})
}

func TestReferenceValidator(t *testing.T) {
	t.Run("Known and unknown references", func(t *testing.T) {
		lookup := func(refType, value string) (bool, error) {
			return refType == "category" && (value == "Travel" || value == "Hosting"), nil
		}
		v := NewReferenceValidator(lookup, 10)

		assert.True(t, v.ValidateReference(2, "category", "category", "Travel"))
		assert.False(t, v.ValidateReference(3, "category", "category", "Rocketry"))

		errs := v.Errors().Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportReferenceNotFound, errs[0].Code)
	})

	t.Run("Lookups are cached per value", func(t *testing.T) {
		calls := 0
		lookup := func(refType, value string) (bool, error) {
			calls++
			return value == "Travel", nil
		}
		v := NewReferenceValidator(lookup, 10)

		v.ValidateReference(2, "category", "category", "Travel")
		v.ValidateReference(3, "category", "category", "Travel")
		assert.Equal(t, 1, calls)

		v.ValidateReference(4, "category", "category", "Rocketry")
		assert.Equal(t, 2, calls)
	})

	t.Run("Empty cells never hit the store", func(t *testing.T) {
		calls := 0
		v := NewReferenceValidator(func(string, string) (bool, error) {
			calls++
			return true, nil
		}, 10)

		assert.True(t, v.ValidateReference(2, "category", "category", ""))
		assert.Equal(t, 0, calls)
	})

	t.Run("PreloadReferences warms the cache", func(t *testing.T) {
		lookup := func(refType, value string) (bool, error) {
			return value == "Travel" || value == "Hosting", nil
		}
		v := NewReferenceValidator(lookup, 10)
		require.NoError(t, v.PreloadReferences("category", []string{"Travel", "Hosting", "Rocketry"}))

		assert.True(t, v.ValidateReference(2, "category", "category", "Travel"))
		assert.True(t, v.ValidateReference(3, "category", "category", "Hosting"))
		assert.False(t, v.ValidateReference(4, "category", "category", "Rocketry"))
	})

	t.Run("Reset drops the cache", func(t *testing.T) {
		calls := 0
		v := NewReferenceValidator(func(string, string) (bool, error) {
			calls++
			return true, nil
		}, 10)

		v.ValidateReference(2, "category", "category", "Travel")
		assert.Equal(t, 1, calls)

		v.Reset()
		v.ValidateReference(3, "category", "category", "Travel")
		assert.Equal(t, 2, calls)
	})
}

func TestUniquenessValidator(t *testing.T) {
	t.Run("Value not yet stored", func(t *testing.T) {
		v := NewUniquenessValidator(func(string, string, string) (bool, error) {
			return false, nil
		}, 10)
		assert.True(t, v.ValidateUnique(2, "customer_number", "customers", "C-001"))
	})

	t.Run("Value already stored", func(t *testing.T) {
		v := NewUniquenessValidator(func(entityType, field, value string) (bool, error) {
			return value == "C-100", nil
		}, 10)
		assert.False(t, v.ValidateUnique(2, "customer_number", "customers", "C-100"))

		errs := v.Errors().Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodeImportDuplicateInDB, errs[0].Code)
	})

	t.Run("Empty cells pass", func(t *testing.T) {
		v := NewUniquenessValidator(func(string, string, string) (bool, error) {
			return true, nil
		}, 10)
		assert.True(t, v.ValidateUnique(2, "customer_number", "customers", ""))
	})
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		fieldType FieldType
		wantErr   bool
	}{
		{"string always passes", "anything", TypeString, false},
		{"uuid canonical", "550e8400-e29b-41d4-a716-446655440000", TypeUUID, false},
		{"uuid uppercase", "550E8400-E29B-41D4-A716-446655440000", TypeUUID, false},
		{"uuid truncated", "550e8400-e29b-41d4", TypeUUID, true},
		{"uuid bad characters", "550g8400-e29b-41d4-a716-44665544zzzz", TypeUUID, true},
		{"uuid empty", "", TypeUUID, true},
		{"int", "42", TypeInt, false},
		{"int fractional", "4.2", TypeInt, true},
		{"bool literal", "yes", TypeBool, false},
		{"bool garbage", "jein", TypeBool, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseCell(tt.value, tt.fieldType, "2006-01-02")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
