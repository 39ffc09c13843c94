package health

type Input struct{}

type Output struct {
	Body Response
}

// Response is the liveness report. Database is "up" or "not_configured".
type Response struct {
	Status   string `json:"status" example:"OK" doc:"Overall status"`
	Database string `json:"database" example:"up" doc:"Database reachability"`
}
