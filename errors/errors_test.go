package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "set import.encoding to windows-1252")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "set import.encoding to windows-1252", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NewNotFoundError("borehole %s", "BH1"), IsNotFoundError, true},
		{"wrapped not found", Wrap(NewNotFoundError("borehole %s", "BH1"), "get"), IsNotFoundError, true},
		{"invalid request", NewInvalidRequestError("bad delimiter %q", "||"), IsInvalidRequestError, true},
		{"contract violation", NewContractViolation("reporter is nil"), IsContractViolation, true},
		{"plain error is not a contract violation", New("boom"), IsContractViolation, false},
		{"nil", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestNewContractViolation_Message(t *testing.T) {
	err := NewContractViolation("%s is nil", "table")
	assert.Contains(t, err.Error(), "table is nil")
	assert.Contains(t, err.Error(), "contract violation")
}

func ExampleWrap() {
	baseErr := New("disk full")
	err := Wrap(baseErr, "failed to write export")
	fmt.Println(err)
	// Output: failed to write export: disk full
}
