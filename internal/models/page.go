package models

import "time"

// Page is a fetched and (optionally) browser-rendered page
type Page struct {
	URL       string    `json:"url"`
	HTML      string    `json:"html"`
	Renderer  string    `json:"renderer"` // "static" or "chromedp"
	FetchedAt time.Time `json:"fetched_at"`
}
