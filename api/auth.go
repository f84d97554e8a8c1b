package api

type LocalLoginRequest struct {
	Password string `json:"password"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}
