package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "plain error", err: errors.New("boom"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
		{name: "network", err: Network("fetch failed", errors.New("reset")), want: KindNetwork},
		{name: "wrapped validation", err: fmt.Errorf("submit: %w", Validation("passengers", "bad")), want: KindValidation},
		{name: "quota", err: Quota("full", nil), want: KindStorageQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network("location search failed", cause).WithOp("SearchLocations")

	assert.Equal(t, "SearchLocations: location search failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsUpstream(t *testing.T) {
	assert.True(t, IsUpstream(Parse("bad json", nil)))
	assert.True(t, IsUpstream(Network("503", nil)))
	assert.False(t, IsUpstream(Validation("date", "bad")))
	assert.False(t, IsUpstream(nil))
}
