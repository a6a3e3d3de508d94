package dto

// AuthRequest carries registration and login credentials. Role is only
// honored on registration; login ignores it.
type AuthRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}
