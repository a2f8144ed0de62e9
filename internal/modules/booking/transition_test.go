package booking

import (
	"testing"

	"bookhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		in   string
		want Action
		ok   bool
	}{
		{"accept", ActionAccept, true},
		{"Accept", ActionAccept, true},
		{" reject ", ActionReject, true},
		{"complete", ActionComplete, true},
		{"cancel", ActionCancel, true},
		{"customerCancel", ActionCancel, true},
		{"customer_cancel", ActionCancel, true},
		{"markComplete", ActionMarkComplete, true},
		{"mark_complete", ActionMarkComplete, true},
		{"pay", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseAction(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestResolve_ProviderActions(t *testing.T) {
	r, ok := resolve(domain.RoleProvider, ActionAccept)
	require.True(t, ok)
	assert.Equal(t, domain.StateAccepted, r.target)
	assert.True(t, r.from[domain.StatePending])
	assert.False(t, r.from[domain.StateAccepted])
	assert.False(t, r.timeGated)
	assert.False(t, r.keepsReason)

	r, ok = resolve(domain.RoleProvider, ActionReject)
	require.True(t, ok)
	assert.Equal(t, domain.StateRejected, r.target)
	assert.True(t, r.keepsReason)

	r, ok = resolve(domain.RoleProvider, ActionComplete)
	require.True(t, ok)
	assert.Equal(t, domain.StateCompleted, r.target)
	assert.True(t, r.timeGated)
	assert.True(t, r.from[domain.StateAccepted])
	assert.True(t, r.from[domain.StateCustomerCompleted])
	assert.False(t, r.from[domain.StatePending])

	r, ok = resolve(domain.RoleProvider, ActionCancel)
	require.True(t, ok)
	assert.Equal(t, domain.StateCancelled, r.target)
	assert.True(t, r.keepsReason)

	// markComplete is a customer-only action
	_, ok = resolve(domain.RoleProvider, ActionMarkComplete)
	assert.False(t, ok)
}

func TestResolve_CustomerActions(t *testing.T) {
	// A customer cancel lands in rejected, not cancelled
	r, ok := resolve(domain.RoleCustomer, ActionCancel)
	require.True(t, ok)
	assert.Equal(t, domain.StateRejected, r.target)
	assert.True(t, r.keepsReason)
	assert.True(t, r.from[domain.StatePending])
	assert.True(t, r.from[domain.StateAccepted])

	// markComplete carries no temporal gate
	r, ok = resolve(domain.RoleCustomer, ActionMarkComplete)
	require.True(t, ok)
	assert.Equal(t, domain.StateCustomerCompleted, r.target)
	assert.False(t, r.timeGated)

	for _, a := range []Action{ActionAccept, ActionReject, ActionComplete} {
		_, ok := resolve(domain.RoleCustomer, a)
		assert.False(t, ok, string(a))
	}
}

func TestResolve_TargetsNeverTerminalSource(t *testing.T) {
	// No rule accepts a terminal state as its starting point.
	for role, byAction := range transitions {
		for action, r := range byAction {
			for from := range r.from {
				assert.False(t, from.Terminal(),
					"%s/%s allows transition from terminal %s", role, action, from)
			}
		}
	}
}
