package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/utils/databaseutils"
	"github.com/inkwellcms/inkwell/internal/utils/stringutils"
	"github.com/inkwellcms/inkwell/models"
)

var ErrDuplicateUsername = xerrors.Message("Duplicate username")

const userColumns = `u.id, u.name, u.username, u.role, u.password`

func scanUser(rows *sql.Rows) (*auth.User, error) {
	user := &auth.User{}
	if err := rows.Scan(&user.ID, &user.Name, &user.Username, &user.Role, &user.Password); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}

// CreateUser inserts the user. Usernames are case-normalized to lowercase
// before they hit the store.
func (c *Core) CreateUser(ctx context.Context, user *auth.User) error {
	const insertSQL = `
		INSERT INTO users (name, username, role, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	user.Username = strings.ToLower(user.Username)

	args := []any{user.Name, user.Username, user.Role, user.Password}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, func(rows *sql.Rows) (*auth.User, error) {
		if err := rows.Scan(&user.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		switch {
		case strings.Contains(err.Error(), `users_username_key`):
			return xerrors.New(ErrDuplicateUsername)
		default:
			return xerrors.New(err)
		}
	}

	return nil
}

func (c *Core) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.username = $1`, userColumns)

	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, strings.ToLower(username))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)

	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUsers(ctx context.Context) ([]*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u ORDER BY u.username`, userColumns)

	users, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return users, nil
}

func (c *Core) GetUsersByIdList(ctx context.Context, userIdList []int64) ([]*auth.User, error) {
	if len(userIdList) == 0 {
		return []*auth.User{}, nil
	}

	placeholders, args := stringutils.INClause(userIdList)
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.id IN (%s)
	`, userColumns, strings.Join(placeholders, ", "))

	users, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return users, nil
}

// GetUsersWithPostCounts returns every author with the number of posts they
// own, drafts included. This is an administrative view.
func (c *Core) GetUsersWithPostCounts(ctx context.Context) ([]*models.AuthorPostCount, error) {
	const query = `
		SELECT u.id, u.name, u.username, COUNT(p.id) AS post_count
		FROM users u
		LEFT JOIN posts p ON p.author_id = u.id
		GROUP BY u.id, u.name, u.username
		ORDER BY u.username
	`

	authorCounts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.AuthorPostCount, error) {
		authorCount := &models.AuthorPostCount{}
		if err := rows.Scan(&authorCount.AuthorID, &authorCount.Name, &authorCount.Username, &authorCount.PostCount); err != nil {
			return nil, xerrors.New(err)
		}
		return authorCount, nil
	})
	if err != nil {
		return nil, xerrors.New(err)
	}

	return authorCounts, nil
}
