package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ashfaq-akash/LittleLemonApi/internal/database"
	"github.com/ashfaq-akash/LittleLemonApi/internal/models"
)

func nowUTC() time.Time { return time.Now().UTC() }

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsSuperuser, &u.DateJoined, &u.Groups)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *queries) CreateUser(ctx context.Context, u *models.User) error {
	if u.DateJoined.IsZero() {
		u.DateJoined = nowUTC()
	}
	err := q.db.QueryRow(ctx, database.InsertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.IsSuperuser, u.DateJoined).Scan(&u.ID)
	if err != nil {
		return mapErr(err)
	}
	for _, g := range u.Groups {
		if err := q.AddUserToGroup(ctx, u.ID, g); err != nil {
			return err
		}
	}
	return nil
}

func (q *queries) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, database.GetUserSQL, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, database.GetUserByUsernameSQL, username))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// DeleteUser relies on the schema's ON DELETE rules for carts, orders and crew assignments
func (q *queries) DeleteUser(ctx context.Context, id int64) error {
	return q.execOne(ctx, database.DeleteUserSQL, id)
}

func (q *queries) ListGroupMembers(ctx context.Context, group string) ([]models.User, error) {
	rows, err := q.db.Query(ctx, database.ListGroupMembersSQL, group)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (q *queries) AddUserToGroup(ctx context.Context, userID int64, group string) error {
	_, err := q.db.Exec(ctx, database.AddUserToGroupSQL, userID, group)
	return mapErr(err)
}

func (q *queries) RemoveUserFromGroup(ctx context.Context, userID int64, group string) (bool, error) {
	tag, err := q.db.Exec(ctx, database.RemoveUserFromGroupSQL, userID, group)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (q *queries) GetToken(ctx context.Context, userID int64) (string, error) {
	var key string
	if err := q.db.QueryRow(ctx, database.GetTokenSQL, userID).Scan(&key); err != nil {
		return "", mapErr(err)
	}
	return key, nil
}

func (q *queries) CreateToken(ctx context.Context, userID int64, key string) error {
	_, err := q.db.Exec(ctx, database.InsertTokenSQL, key, userID)
	return mapErr(err)
}

func (q *queries) GetUserByToken(ctx context.Context, key string) (*models.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, database.GetUserByTokenSQL, key))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}
