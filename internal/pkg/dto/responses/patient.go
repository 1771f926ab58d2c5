package responses

import "time"

type DocumentURL struct {
	DocumentID   string    `json:"documentId"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
