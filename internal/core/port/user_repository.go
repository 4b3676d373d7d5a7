package port

import (
	"context"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
)

// IdentifierQuery narrows a credential lookup. Identifier is matched
// against username, email, and mobile (logical OR). UserType and ID,
// when set, restrict the match further; ID is the authoritative
// disambiguation input after an ambiguous login.
type IdentifierQuery struct {
	Identifier string
	UserType   *domain.UserType
	ID         *int64
}

// UserFilter scopes admin listings.
type UserFilter struct {
	UserType *domain.UserType
	Status   *domain.UserStatus
	Limit    int
	Offset   int
}

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIdentifier(ctx context.Context, query IdentifierQuery) ([]domain.User, error)
	ExistsByContact(ctx context.Context, email, mobile string, userType domain.UserType) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}
