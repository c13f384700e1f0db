package authz

import "github.com/aaeducates/backend/internal/app/models"

// Actor is the identity a request runs as. The zero value is anonymous.
type Actor struct {
	UserID      int64
	Email       string
	Role        models.Role
	IsStaff     bool
	IsSuperuser bool
}

// ActorFromUser builds the actor for an authenticated user
func ActorFromUser(u *models.User) *Actor {
	if u == nil {
		return &Actor{}
	}
	return &Actor{
		UserID:      u.ID,
		Email:       u.Email,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Authenticated reports whether the actor carries an identity
func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID > 0
}

// IsAdmin reports whether the universal override applies
func (a *Actor) IsAdmin() bool {
	return a.Authenticated() && (a.IsStaff || a.Role == models.RoleAdmin)
}

// Operation is the class of request made against a resource kind
type Operation string

const (
	OpList     Operation = "list"
	OpRetrieve Operation = "retrieve"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
)

// Operations lists every operation
var Operations = []Operation{OpList, OpRetrieve, OpCreate, OpUpdate, OpDelete}

// IsSafe reports whether op only reads
func (op Operation) IsSafe() bool {
	return op == OpList || op == OpRetrieve
}
