package model

import (
	"time"

	"github.com/google/uuid"
)

// Department choices for User.
const (
	DeptSales         = "SALES"
	DeptEngineering   = "ENGINEERING"
	DeptManufacturing = "MANUFACTURING"
	DeptManagement    = "MANAGEMENT"
)

// User stores system users. Administrator capability is derived, not stored:
// staff and admin flags both grant it.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       string    `gorm:"column:userid;uniqueIndex;not null"` // login identifier
	Email        string    `gorm:"uniqueIndex;not null"`
	FirstName    *string
	LastName     *string
	FullName     string
	PhoneNumber  *string
	Department   string `gorm:"type:varchar(20);not null;default:''"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	IsStaff      bool   `gorm:"not null;default:false"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

func (User) TableName() string { return "users" }

// IsAdministrator reports whether this user may perform admin-gated
// operations (deletes, user management).
func (u *User) IsAdministrator() bool {
	return u.IsAdmin || u.IsStaff
}

// ComposeFullName fills FullName from the name parts when it is blank.
func (u *User) ComposeFullName() {
	if u.FullName == "" && u.FirstName != nil && u.LastName != nil {
		u.FullName = *u.LastName + " " + *u.FirstName
	}
}

// Actor is the authenticated caller of a core operation. It is passed
// explicitly into every service method that needs identity or capability —
// never read from ambient state.
type Actor struct {
	ID      uuid.UUID
	Name    string
	IsAdmin bool
}

// ActorFromUser builds the request-scoped actor for a user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Name: u.FullName, IsAdmin: u.IsAdministrator()}
}
