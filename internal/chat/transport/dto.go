// Package transport defines request/response DTOs for the chat endpoints.
package transport

// ChatRequest is the conversational endpoint input.
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// ChatResponse carries the assistant's reply. The quote itself is never
// returned here; clients read it from /proforma.
type ChatResponse struct {
	Reply string `json:"reply"`
}
