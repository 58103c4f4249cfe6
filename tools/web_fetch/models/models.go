package models

// Result is one fetched page reduced to its readable article text.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	HTMLHash string `json:"html_hash"`
	Status   int    `json:"status"`
	FetchMS  int    `json:"fetch_ms"`
}
