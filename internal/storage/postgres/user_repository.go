package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const userColumns = `id, name, email, password_hash, phone, is_admin,
	street, apartment, city, zip, country`

type userTxRepository struct {
	t *storeTx
}

func (r *userTxRepository) Create(user domain.User) error {
	_, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO users (
			id, name, email, password_hash, phone, is_admin,
			street, apartment, city, zip, country
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.IsAdmin, user.Street, user.Apartment, user.City, user.Zip, user.Country,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userTxRepository) Get(id string) (domain.User, error) {
	user, err := scanUser(r.t.tx.QueryRowContext(r.t.ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (r *userTxRepository) GetByEmail(email string) (domain.User, error) {
	user, err := scanUser(r.t.tx.QueryRowContext(r.t.ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return user, nil
}

func (r *userTxRepository) List() ([]domain.User, error) {
	rows, err := r.t.tx.QueryContext(r.t.ctx,
		`SELECT `+userColumns+` FROM users ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}

func (r *userTxRepository) Delete(id string) error {
	res, err := r.t.tx.ExecContext(r.t.ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone,
		&user.IsAdmin, &user.Street, &user.Apartment, &user.City, &user.Zip,
		&user.Country,
	); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

var _ domain.UserRepository = (*userTxRepository)(nil)
