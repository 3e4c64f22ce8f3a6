package roomhandler

// ErrorResponse is the JSON error body for all REST failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TitleListResponse carries the catalog title suggestions.
type TitleListResponse struct {
	Titles []string `json:"titles"`
}
