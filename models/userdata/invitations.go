package userdata

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Invitation status values. Transitions are monotonic: once an invitation
// leaves pending it never returns.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type Invitation struct {
	bun.BaseModel `bun:"userdata.invitations"`

	Id        string `bun:",pk"`
	TeamId    int64
	Team      *Team `bun:"rel:belongs-to,join:team_id=id"`
	Email     string
	Role      string
	Status    string
	CreatedAt time.Time
}
