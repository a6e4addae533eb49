package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string   `json:"name" validate:"required"`
	Weight *float64 `json:"weight" validate:"required,gte=-10,lte=10"`
}

func ptr(f float64) *float64 { return &f }

func TestStructValid(t *testing.T) {
	assert.Nil(t, Struct(sample{Name: "x", Weight: ptr(0)}))
	assert.Nil(t, Struct(sample{Name: "x", Weight: ptr(-10)}))
	assert.Nil(t, Struct(sample{Name: "x", Weight: ptr(10)}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	fields := Struct(sample{Weight: ptr(11)})
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "weight")
	assert.Equal(t, "must be <= 10", fields["weight"])
}

func TestStructZeroValuePointerPassesRequired(t *testing.T) {
	// A weight of 0 is a legitimate value; required only rejects nil.
	assert.Nil(t, Struct(sample{Name: "x", Weight: ptr(0)}))
	assert.Contains(t, Struct(sample{Name: "x"}), "weight")
}
