package domain

import "time"

type ShortLink struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"original_url"`
	Hits        int64     `json:"hits"`
	CreatedAt   time.Time `json:"created_at"`
}
