package pool

import (
	"time"

	"github.com/functionland/blox-wizard/internal/chain"
	"github.com/functionland/blox-wizard/internal/container"
)

// State is where an account stands with respect to pools.
type State string

const (
	NotMember      State = "none"
	RequestPending State = "requested"
	Member         State = "member"
)

// Membership is the account's pool state; PoolID is empty for NotMember.
type Membership struct {
	State  State  `json:"state"`
	PoolID string `json:"poolId,omitempty"`
}

// MembershipFromStatus derives the membership from a pool API record. A confirmed
// membership takes precedence over a pending request.
func MembershipFromStatus(st chain.UserStatus) Membership {
	switch {
	case st.PoolID != "":
		return Membership{State: Member, PoolID: string(st.PoolID)}
	case st.RequestPoolID != "":
		return Membership{State: RequestPending, PoolID: string(st.RequestPoolID)}
	default:
		return Membership{State: NotMember}
	}
}

// Action names used in logs and results.
const (
	ActionJoin   = "join"
	ActionLeave  = "leave"
	ActionCancel = "cancel"
)

// ActionResult is the outcome of a join, leave or cancel.
type ActionResult struct {
	ActionID   string                    `json:"actionId"`
	Action     string                    `json:"action"`
	Status     string                    `json:"status"`
	PoolID     string                    `json:"poolId"`
	Membership State                     `json:"membership"`
	Restarts   []container.RestartResult `json:"restarts"`
}

// Snapshot is the last observed membership of the node's account.
type Snapshot struct {
	AccountID  string           `json:"accountId"`
	Membership Membership       `json:"membership"`
	Status     chain.UserStatus `json:"status"`
	FetchedAt  time.Time        `json:"fetchedAt"`
}
