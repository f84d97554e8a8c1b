package api

// PostRequest is the body of a create or update. Date and Author are optional overrides.
type PostRequest struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Date     string `json:"date,omitempty"`
	Author   string `json:"author,omitempty"`
}

type CreatedResponse struct {
	Slug string `json:"slug"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
