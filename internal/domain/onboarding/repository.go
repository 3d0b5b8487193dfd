package onboarding

import "context"

type RequestRepository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, id uint) (*Request, error)
	GetByRID(ctx context.Context, rid string) (*Request, error)
	// GetByRIDForUpdate locks the request row inside the surrounding
	// transaction. Approval re-checks the status on the locked row so a
	// request is provisioned at most once.
	GetByRIDForUpdate(ctx context.Context, rid string) (*Request, error)
	// HasActiveForEmail reports whether a non-terminal request already
	// exists for the email.
	HasActiveForEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter RequestFilter) ([]*Request, int64, error)
	Update(ctx context.Context, request *Request) error
}

type RequestFilter struct {
	Email    string
	RoleCode string
	Status   Status
	Page     int
	PageSize int
}
