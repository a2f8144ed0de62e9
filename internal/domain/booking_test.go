package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPair_Projection(t *testing.T) {
	cases := []struct {
		state  State
		status BookingStatus
		detail DetailStatus
	}{
		{StatePending, BookingPending, DetailPending},
		{StateAccepted, BookingAccepted, DetailConfirmed},
		{StateRejected, BookingRejected, DetailCancelled},
		{StateCompleted, BookingCompleted, DetailCompleted},
		{StateCancelled, BookingCancelled, DetailCancelled},
		{StateCustomerCompleted, BookingAccepted, DetailCompleted},
	}

	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			status, detail := tc.state.StatusPair()
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.detail, detail)
		})
	}
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateAccepted.Terminal())
	assert.False(t, StateCustomerCompleted.Terminal())
	assert.True(t, StateRejected.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateCancelled.Terminal())
}

func TestState_Valid(t *testing.T) {
	for _, s := range []State{
		StatePending, StateAccepted, StateRejected,
		StateCompleted, StateCancelled, StateCustomerCompleted,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, State("unknown").Valid())
	assert.False(t, State("").Valid())
}
