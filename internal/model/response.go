package model

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// APIResponse is the envelope returned on every success and failure
// path, including gate rejections.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   *int64 `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}
