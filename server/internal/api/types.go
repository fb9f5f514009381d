package api

// healthResponse is the payload for GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
