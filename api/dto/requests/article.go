// ABOUTME: Request DTOs for article, favorite and trigger endpoints
// ABOUTME: Query parameter structs live next to the handlers that bind them

package requests

// FavoriteRequest carries notes and comma-delimited tags for a favorite
type FavoriteRequest struct {
	Notes string `json:"notes,omitempty" maxLength:"10000"`
	Tags  string `json:"tags,omitempty" maxLength:"1000" doc:"Comma-delimited tags"`
}

// ArxivTriggerRequest configures a manual ArXiv extraction run
type ArxivTriggerRequest struct {
	BatchSize  int  `json:"batch_size,omitempty" minimum:"0" doc:"Articles per batch, clamped to [10, 1000]; 0 selects 100"`
	Continuous bool `json:"continuous,omitempty" doc:"Keep running batches until no candidates remain"`
}
