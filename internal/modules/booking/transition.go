package booking

import (
	"strings"

	"bookhub/internal/domain"
)

type Action string

const (
	ActionAccept       Action = "accept"
	ActionReject       Action = "reject"
	ActionComplete     Action = "complete"
	ActionCancel       Action = "cancel"
	ActionMarkComplete Action = "mark_complete"
)

// ParseAction normalizes the wire action string. Both markComplete and
// mark_complete are accepted; customerCancel is the customer-side
// spelling of cancel.
func ParseAction(s string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return ActionAccept, true
	case "reject":
		return ActionReject, true
	case "complete":
		return ActionComplete, true
	case "cancel", "customercancel", "customer_cancel":
		return ActionCancel, true
	case "markcomplete", "mark_complete":
		return ActionMarkComplete, true
	}
	return "", false
}

type rule struct {
	target domain.State
	from   map[domain.State]bool
	// provider complete is gated on the event window having passed;
	// the customer mark-complete path deliberately is not.
	timeGated bool
	// reject and cancel persist a supplied reason, nothing else does.
	keepsReason bool
}

func states(ss ...domain.State) map[domain.State]bool {
	m := make(map[domain.State]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

var transitions = map[domain.UserRole]map[Action]rule{
	domain.RoleProvider: {
		ActionAccept: {
			target: domain.StateAccepted,
			from:   states(domain.StatePending),
		},
		ActionReject: {
			target:      domain.StateRejected,
			from:        states(domain.StatePending),
			keepsReason: true,
		},
		ActionComplete: {
			target:    domain.StateCompleted,
			from:      states(domain.StateAccepted, domain.StateCustomerCompleted),
			timeGated: true,
		},
		ActionCancel: {
			target:      domain.StateCancelled,
			from:        states(domain.StatePending, domain.StateAccepted, domain.StateCustomerCompleted),
			keepsReason: true,
		},
	},
	domain.RoleCustomer: {
		// A customer cancel lands in rejected, mirroring a provider
		// rejection from the provider's point of view.
		ActionCancel: {
			target:      domain.StateRejected,
			from:        states(domain.StatePending, domain.StateAccepted),
			keepsReason: true,
		},
		ActionMarkComplete: {
			target: domain.StateCustomerCompleted,
			from:   states(domain.StatePending, domain.StateAccepted),
		},
	},
}

// resolve returns the applicable rule for the actor and action.
// ok is false when the role has no such action at all.
func resolve(role domain.UserRole, action Action) (rule, bool) {
	byAction, ok := transitions[role]
	if !ok {
		return rule{}, false
	}
	r, ok := byAction[action]
	return r, ok
}
