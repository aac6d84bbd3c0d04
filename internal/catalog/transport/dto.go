package transport

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status         string `json:"status"`
	ProductsCached int    `json:"productsCached"`
	CacheAgeMs     *int64 `json:"cacheAgeMs"`
}

// RefreshResponse is the operator refresh result with item counts
// before and after the blocking fetch.
type RefreshResponse struct {
	OK        bool  `json:"ok"`
	Before    int   `json:"before"`
	After     int   `json:"after"`
	FetchedAt int64 `json:"fetchedAt"`
}
