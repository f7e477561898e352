package db

import (
	"context"

	"github.com/shipsafe/cyberwatch/pkg/common"
)

type UserRepository interface {
	UpsertUser(ctx context.Context, data *common.User) error
}

const upsertUser = `
INSERT INTO user (user_id, email, name, image)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
	email=VALUES(email),
	name=VALUES(name),
	image=VALUES(image)
`

func (c *Client) UpsertUser(ctx context.Context, data *common.User) error {
	return c.DB.WithContext(ctx).Exec(upsertUser,
		data.UserID,
		data.Email,
		data.Name,
		data.Image,
	).Error
}
