package models

// Profile holds the profile payload returned by the backend for a user.
type Profile struct {
	ResultCode   int    `json:"resultCode"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Age          int    `json:"age"`
	ProfilePhoto string `json:"profilePhoto"`
	Video        string `json:"video"`
}

// User represents a user record from the directory file.
// PasswordHash is optional: records without one authenticate by
// username existence alone.
type User struct {
	Username     string  `json:"username"`
	PasswordHash string  `json:"passwordHash,omitempty"`
	Response     Profile `json:"response"`
}
