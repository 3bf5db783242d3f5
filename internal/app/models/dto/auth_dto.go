package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"faculty1"`
	Password string `json:"password" binding:"required" example:"Faculty@123"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	Access           string `json:"access"`
	Refresh          string `json:"refresh"`
	TokenType        string `json:"token_type" example:"Bearer"`
	ExpiresIn        int64  `json:"expires_in" example:"3600"`
	RefreshExpiresIn int64  `json:"refresh_expires_in" example:"86400"`
	UserType         string `json:"user_type" example:"faculty" enums:"faculty,student,unknown"`
	FacultyID        *int64 `json:"faculty_id,omitempty"`
	StudentID        *int64 `json:"student_id,omitempty"`
}
