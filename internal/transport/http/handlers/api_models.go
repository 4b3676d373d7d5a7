package handlers

import "github.com/udaykiran8062/schoolManagement/internal/core/domain"

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	UserType int16  `json:"userType"`
	Role     int64  `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	UserType *int16 `json:"userType"`
	ID       *int64 `json:"id"`
}

// loginResponse is the success shape browser clients consume alongside
// the token cookies.
type loginResponse struct {
	IsLogin      bool        `json:"isLogin"`
	Status       int         `json:"status"`
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	User         domain.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

// ambiguousLoginResponse lists the candidate accounts when one
// identifier matches several. No tokens accompany it; the client must
// re-submit with the chosen account's id.
type ambiguousLoginResponse struct {
	Status  bool          `json:"status"`
	IsLogin bool          `json:"isLogin"`
	User    []domain.User `json:"user"`
}

type loginErrorResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type registerResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    *domain.User `json:"data,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type gateErrorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
