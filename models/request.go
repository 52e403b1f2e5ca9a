package models

// Clear scopes accepted on IndexRequest. ClearScopeAll wipes the whole
// collection, matching the historical "start fresh" behavior; ClearScopeSource
// restricts the delete to entries tagged with the request's own source.
const (
	ClearScopeAll    = "all"
	ClearScopeSource = "source"
)

// IndexRequest is the payload for POST /index. When ClearPrevious is set and
// ClearScope is empty or "all", every entry in the collection is deleted
// before the new chunks are written, regardless of Source.
type IndexRequest struct {
	Text          string `json:"text"`
	Source        string `json:"source"`
	ClearPrevious bool   `json:"clearPrevious"`
	ClearScope    string `json:"clearScope,omitempty"`
}

// QueryRequest is the payload for POST /query. FilterBySource, when set,
// limits retrieval to chunks whose source tag equals it exactly.
type QueryRequest struct {
	Query          string `json:"query"`
	FilterBySource string `json:"filterBySource,omitempty"`
}
