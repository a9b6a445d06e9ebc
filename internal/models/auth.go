package models

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenInfo carries an issued bearer token.
type TokenInfo struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// AuthResult is the successful login payload.
type AuthResult struct {
	Token           TokenInfo `json:"token"`
	UserInformation Profile   `json:"user_information"`
}
