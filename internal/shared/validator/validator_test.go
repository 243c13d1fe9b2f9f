package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Bucket string `json:"bucket_name" validate:"required"`
	Days   int    `validate:"min=1"`
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(sample{Bucket: "b", Days: 1}))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := Validate(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key="bucket_name"`)
	assert.Contains(t, err.Error(), `failed "required" validation`)
	assert.Contains(t, err.Error(), `key="Days"`)
	assert.Contains(t, err.Error(), `failed "min" validation`)
}
