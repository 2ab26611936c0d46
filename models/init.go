package models

import (
	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/uptrace/bun"
)

func InitModelRegistrations(db *bun.DB) {
	db.RegisterModel((*userdata.TeamToUser)(nil))
}
