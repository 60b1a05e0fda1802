package domain

import "encoding/json"

// BatchItemResult is the outcome of one item in a batch, in input order.
type BatchItemResult struct {
	Index   int
	Success bool
	Data    any
	Error   string

	// Err keeps the structured cause for callers; it never reaches the wire.
	Err error
}

// MarshalJSON emits data on success (even a JSON null) and error otherwise.
func (r BatchItemResult) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Index   int  `json:"index"`
			Data    any  `json:"data"`
		}{true, r.Index, r.Data})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Index   int    `json:"index"`
		Error   string `json:"error"`
	}{false, r.Index, r.Error})
}

// BatchReport aggregates per-item outcomes without letting one failure abort the rest.
type BatchReport struct {
	Results    []BatchItemResult `json:"results"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
}
