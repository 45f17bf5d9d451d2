package dto

// ─── Auth ────────────────────────────────────────────────────────────────────

type LoginRequest struct {
	UserID   string `json:"userid"   validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access"`
	RefreshToken string       `json:"refresh"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

// ─── Users ───────────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	UserID      string  `json:"userid"       validate:"required,min=1,max=50"`
	Email       string  `json:"email"        validate:"required,email"`
	Password    string  `json:"password"     validate:"required,min=8"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Department  string  `json:"department"   validate:"omitempty,oneof=SALES ENGINEERING MANUFACTURING MANAGEMENT"`
	IsStaff     bool    `json:"is_staff"`
	IsAdmin     bool    `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email"        validate:"omitempty,email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Department  *string `json:"department"   validate:"omitempty,oneof=SALES ENGINEERING MANUFACTURING MANAGEMENT"`
	IsStaff     *bool   `json:"is_staff"`
	IsAdmin     *bool   `json:"is_admin"`
	Password    *string `json:"password"     validate:"omitempty,min=8"`
}

type UserResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userid"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Department  string  `json:"department"`
	IsActive    bool    `json:"is_active"`
	IsStaff     bool    `json:"is_staff"`
	IsAdmin     bool    `json:"is_admin"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}
