package v2

// NextResponse tells the client which page to show next
type NextResponse struct {
	Next string `json:"next"`
}

// SetFieldRequest carries the new value of one details field
type SetFieldRequest struct {
	Value string `json:"value"`
}

// ToggleSkillRequest names the tag to add or remove
type ToggleSkillRequest struct {
	Item string `json:"item"`
}

// ToggleSkillResponse reports the tag's new state along with the page
type ToggleSkillResponse struct {
	Item     string      `json:"item"`
	Selected bool        `json:"selected"`
	Page     interface{} `json:"page"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
