package models

// ChatRequest is the payload sent to the assistant endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI assistant.
type ChatResponse struct {
	Reply string `json:"reply"`
}
