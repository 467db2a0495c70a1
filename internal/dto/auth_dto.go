package dto

import "echolearn-client/internal/entity"

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=4"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	User         entity.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=4"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// RegisterResponse carries no tokens; the collaborator contract returns the
// user only, and the client signs in on the credentials it already holds.
type RegisterResponse struct {
	User entity.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username" validate:"required,min=4"`
	Mobile    string `json:"mobile" validate:"omitempty,min=7"`
	Location  string `json:"location"`
	Github    string `json:"github" validate:"omitempty,url"`
	Linkedin  string `json:"linkedin" validate:"omitempty,url"`
	Portfolio string `json:"portfolio" validate:"omitempty,url"`
}
