package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/uptrace/bun"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (c *UserRepo) AddUser(ctx context.Context, user userdata.User) (int64, error) {
	_, err := c.db.NewInsert().Model(&user).
		Column("name", "email", "password").
		Returning("id").
		Exec(ctx)
	return user.Id, err
}

func (c *UserRepo) GetUserByEmail(ctx context.Context, email string) (*userdata.User, error) {
	user := new(userdata.User)

	err := c.db.NewSelect().Model(user).ExcludeColumn("password").Where(`"user"."email" = ?`, email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return user, nil
}

func (c *UserRepo) UserProfile(ctx context.Context, id int64) (*userdata.User, error) {
	user := new(userdata.User)

	err := c.db.NewSelect().Model(user).ExcludeColumn("password").Relation("Teams").Where(`"user"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}
