package domain

import "time"

// ImporterAuthor is the author recorded on imported threads
const ImporterAuthor = "importer_bot"

// RemoteThread is one entry of the import feed
type RemoteThread struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Hashtags    []string  `json:"hashtags"`
	IPFSCid     string    `json:"ipfsCid"`
	IPNSLink    string    `json:"ipnsLink"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ImportResult summarizes one importer run
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
