package memory

import (
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

// userRepositoryInMemory — реализация UserRepository поверх dataset.
type userRepositoryInMemory struct {
	data *dataset
}

func (r *userRepositoryInMemory) Create(user domain.User) error {
	r.data.users[user.ID] = user
	return nil
}

func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	user, ok := r.data.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, error) {
	for _, user := range r.data.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *userRepositoryInMemory) List() ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.data.users))
	for _, user := range r.data.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepositoryInMemory) Delete(id string) error {
	if _, ok := r.data.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.data.users, id)
	return nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
