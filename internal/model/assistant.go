package model

type AssistantRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

type AssistantReply struct {
	Reply string `json:"reply"`
	Model string `json:"model,omitempty"`
}
