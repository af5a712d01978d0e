package response

type GrantResponse struct {
	Balance int64 `json:"balance"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
