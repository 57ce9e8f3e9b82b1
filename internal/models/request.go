package models

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RateProjectRequest struct {
	BrandScore        *int `json:"brandScore"`
	SatisfactionScore *int `json:"satisfactionScore"`
}

type TemplateGenerateRequest struct {
	ProjectID    string `json:"projectId" binding:"required"`
	TemplateName string `json:"templateName" binding:"required"`
	TemplateType string `json:"templateType"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type AddHistoryRequest struct {
	Action      string `json:"action" binding:"required"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Time        string `json:"time"`
}
