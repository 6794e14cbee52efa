package api

// IdeasRequest is the body of POST /ideas. An empty list is accepted.
type IdeasRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// StepsRequest is the body of POST /steps. Name is a pointer so that an
// explicit empty string still counts as present.
type StepsRequest struct {
	Name        *string  `json:"name" binding:"required"`
	Ingredients []string `json:"ingredients" binding:"required"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
