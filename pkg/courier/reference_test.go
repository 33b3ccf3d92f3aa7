package courier_test

import (
	"testing"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/stretchr/testify/assert"
)

func TestNewJobReference_Format(t *testing.T) {
	ref := courier.NewJobReference()

	assert.Len(t, ref, 16)
	for _, c := range ref {
		assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'),
			"reference must be uppercase alphanumeric, got %q", c)
	}
}

func TestNewJobReference_Distinct(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		ref := courier.NewJobReference()
		assert.False(t, seen[ref], "duplicate reference %s after %d draws", ref, i)
		seen[ref] = true
	}
}

func TestNewAssignmentCode_Format(t *testing.T) {
	code := courier.NewAssignmentCode()

	assert.Len(t, code, 8)
	assert.Equal(t, byte('A'), code[0])
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "0001", courier.FormatOrderNumber(1))
	assert.Equal(t, "0042", courier.FormatOrderNumber(42))
	assert.Equal(t, "9999", courier.FormatOrderNumber(9999))
	assert.Equal(t, "0000", courier.FormatOrderNumber(10000))
}
