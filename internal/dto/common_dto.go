package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type Message struct {
	Message string `json:"message"`
}

type DatabaseHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Database DatabaseHealth `json:"database"`
}
