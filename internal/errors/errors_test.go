package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := InvalidConfidenceLevel(80)
	wrapped := Wrap(base, "evaluation failed")

	assert.Equal(t, CodeInvalidConfidenceLevel, GetCode(wrapped))
	assert.True(t, IsCode(wrapped, CodeInvalidConfidenceLevel))
	assert.Contains(t, wrapped.Error(), "choose from 90, 95, or 99")
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain app error", InvalidInput("conversions cannot be negative"), "conversions cannot be negative"},
		{"wrapped app error", Wrap(ConfigInvalid("server port must be numeric"), "configuration validation failed"), "configuration validation failed: server port must be numeric"},
		{"wrapped twice", Wrapf(Wrap(InvalidConfidenceLevel(80), "row 3"), "batch %s", "a.csv"), "batch a.csv: row 3: invalid confidence level 80: choose from 90, 95, or 99"},
		{"foreign cause", Wrap(fmt.Errorf("permission denied"), "failed to open Excel file"), "failed to open Excel file: permission denied"},
		{"fmt around app error", fmt.Errorf("outer: %w", DegenerateInput("no visitors")), "no visitors"},
		{"plain error", stderrors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestWrap_ForeignError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk on fire"), "read batch")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "read batch: disk on fire", wrapped.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app error", DegenerateInput("no visitors"), CodeDegenerateInput},
		{"wrapped with fmt", fmt.Errorf("outer: %w", InvalidInput("bad")), CodeInvalidInput},
		{"plain error", stderrors.New("plain"), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestIsCode_NilError(t *testing.T) {
	assert.False(t, IsCode(nil, CodeInvalidInput))
	assert.False(t, IsAppError(nil))
}
