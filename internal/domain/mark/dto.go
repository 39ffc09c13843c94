package mark

type BatchRequest struct {
	Marks []Entry `json:"marks"`
}

type BatchResponse struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
}

type ListResponse struct {
	Marks []Mark `json:"marks"`
	// Summary is set for per-student listings with at least one mark.
	Summary *Summary `json:"summary,omitempty"`
}
