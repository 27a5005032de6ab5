package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// RangeQuery is the shared query shape for endpoints keyed by a stay,
// using YYYY-MM-DD calendar days with a half-open [start, end) meaning.
type RangeQuery struct {
	Start string `form:"start" binding:"required"`
	End   string `form:"end" binding:"required"`
}
