package identity

import "context"

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	Update(ctx context.Context, user *User) error
}

type UserFilter struct {
	Email       string
	Name        string
	IsActive    *bool
	IsSuperuser *bool
	Page        int
	PageSize    int
}
