package models

// Agent is an external HTTP-addressable participant. Name doubles as the
// mention key: a message containing "@"+Name triggers a callback to APIURL.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	APIURL      string `json:"api_url"`
}
