package userdata

import "github.com/uptrace/bun"

type User struct {
	bun.BaseModel `bun:"userdata.users"`

	Id       int64  `bun:",pk,autoincrement" json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"-"`
	Verified bool   `json:"verified,omitempty"`
	Teams    []Team `bun:"m2m:userdata.teams_users,join:Users=Teams" json:"teams,omitempty"`
}
