package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,min=5,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,min=5,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type ProfileResponse struct {
	Status int          `json:"status"`
	User   UserResponse `json:"user"`
}
