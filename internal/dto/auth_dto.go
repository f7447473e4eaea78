package dto

// ─── Requests ────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegistroRequest is the public signup form. New accounts are always created
// with rol cliente; staff roles are assigned by an administrador afterwards.
type RegistroRequest struct {
	Username  string  `json:"username"  validate:"required,min=3,max=40"`
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  string  `json:"password"  validate:"required,min=8"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=15"`
	Direccion *string `json:"direccion"`
}

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=40"`
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Rol      string  `json:"rol"      validate:"required,oneof=administrador vendedor cliente"`
}

type ActualizarUsuarioRequest struct {
	Nombre    string  `json:"nombre"`
	Email     *string `json:"email"    validate:"omitempty,email"`
	Password  string  `json:"password" validate:"omitempty,min=8"`
	Rol       string  `json:"rol"      validate:"omitempty,oneof=administrador vendedor cliente"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Nombre    string  `json:"nombre"`
	Email     *string `json:"email"`
	Rol       string  `json:"rol"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         UsuarioResponse `json:"user"`
}
