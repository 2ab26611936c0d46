package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/uptrace/bun"
)

type TeamRepo struct {
	db *bun.DB
}

func NewTeamRepo(db *bun.DB) *TeamRepo {
	return &TeamRepo{db: db}
}

func (c *TeamRepo) GetTeam(ctx context.Context, id int64) (*userdata.Team, error) {
	team := new(userdata.Team)

	err := c.db.NewSelect().Model(team).Where(`"team"."id" = ?`, id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return team, nil
}

// AddMember inserts a membership row, skipping the insert when the user is
// already a member. Retries after a timed-out accept land here harmlessly.
func (c *TeamRepo) AddMember(ctx context.Context, member userdata.TeamToUser) error {
	_, err := c.db.NewInsert().Model(&member).
		On("CONFLICT (team_id, user_id) DO NOTHING").
		Exec(ctx)
	return err
}
