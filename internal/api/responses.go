package api

// ErrorResponse carries both keys: older console builds read "message", newer ones "error".
type ErrorResponse struct {
	Error   string `json:"error" example:"something went wrong"`
	Message string `json:"message,omitempty" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// HealthResponse reports "ok", "degraded" (an optional dependency is down) or "unavailable".
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

func Err(msg string) ErrorResponse {
	return ErrorResponse{Error: msg, Message: msg}
}
