package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type AuthResponse struct {
	User          User `json:"user"`
	Authenticated bool `json:"authenticated"`
}

type RemixResponse struct {
	Success    bool     `json:"success"`
	Images     []string `json:"images"`
	ProjectIDs []string `json:"projectIds"`
}

type ChatAnalyzeResponse struct {
	Analysis string   `json:"analysis"`
	Project  *Project `json:"project,omitempty"`
}

type TemplateGenerateResponse struct {
	Success bool   `json:"success"`
	Export  Export `json:"export"`
}

type GenerateImageResponse struct {
	Success   bool     `json:"success"`
	ImageData string   `json:"imageData"`
	MimeType  string   `json:"mimeType"`
	ImageURL  string   `json:"imageUrl"`
	Project   *Project `json:"project,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
