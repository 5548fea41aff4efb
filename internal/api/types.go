package api

// User is the marketplace account record returned by the auth endpoints.
// Profile responses may be partial; absent fields stay zero-valued and
// the session manager decides what to carry over.
type User struct {
	ID                  string               `json:"id"`
	Email               string               `json:"email"`
	DisplayName         string               `json:"displayName"`
	Roles               []string             `json:"roles,omitempty"`
	DefaultRole         string               `json:"defaultRole,omitempty"`
	CPF                 string               `json:"cpf,omitempty"`
	PhotographerProfile *PhotographerProfile `json:"photographerProfile,omitempty"`
}

// PhotographerProfile holds the seller-side profile extension.
type PhotographerProfile struct {
	Bio          string `json:"bio,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
	Phone        string `json:"phone,omitempty"`
	City         string `json:"city,omitempty"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email               string               `json:"email"`
	Password            string               `json:"password"`
	DisplayName         string               `json:"displayName"`
	Role                string               `json:"role,omitempty"`
	CPF                 string               `json:"cpf,omitempty"`
	AcceptedTerms       bool                 `json:"acceptedTerms,omitempty"`
	PhotographerProfile *PhotographerProfile `json:"photographerProfile,omitempty"`
}

// loginRequest is the payload for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest is the payload for POST /auth/refresh and /auth/logout.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is the success shape shared by register, login, and
// refresh. Roles and DefaultRole may arrive either inside User or as
// response-level fields depending on backend version; the session
// manager normalizes both.
type TokenResponse struct {
	AccessToken           string   `json:"accessToken"`
	RefreshToken          string   `json:"refreshToken"`
	RefreshTokenExpiresAt string   `json:"refreshTokenExpiresAt,omitempty"`
	User                  *User    `json:"user"`
	Roles                 []string `json:"roles,omitempty"`
	DefaultRole           string   `json:"defaultRole,omitempty"`
}

// logoutResponse is the (mostly empty) success shape of POST /auth/logout.
type logoutResponse struct {
	Message string `json:"message,omitempty"`
}
