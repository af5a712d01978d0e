package request

type GrantRequest struct {
	UserID  string `json:"user_id"`
	Credits int64  `json:"credits"`
}
