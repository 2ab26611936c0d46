package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/uptrace/bun"
)

type InvitationRepo struct {
	db *bun.DB
}

func NewInvitationRepo(db *bun.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

func (c *InvitationRepo) AddInvitation(ctx context.Context, invitation userdata.Invitation) error {
	_, err := c.db.NewInsert().Model(&invitation).Exec(ctx)
	return err
}

// GetInvitation loads an invitation with its team regardless of status.
// Missing rows come back as nil, not an error.
func (c *InvitationRepo) GetInvitation(ctx context.Context, id string) (*userdata.Invitation, error) {
	invite := new(userdata.Invitation)

	err := c.db.NewSelect().Model(invite).Relation("Team").Where(`"invitation"."id" = ?`, id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return invite, nil
}

// TransitionFromPending moves the invitation out of pending with a
// conditional update. Under concurrent calls exactly one caller gets true;
// the rest see false because the row was no longer pending.
func (c *InvitationRepo) TransitionFromPending(ctx context.Context, id, status string) (bool, error) {
	res, err := c.db.NewUpdate().Model((*userdata.Invitation)(nil)).
		Set("status = ?", status).
		Where("id = ? AND status = ?", id, userdata.InvitationPending).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}
