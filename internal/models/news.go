package models

// NewsItem is a headline shown on the home page.
type NewsItem struct {
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Image  string `json:"image,omitempty"`
	Type   string `json:"type"`
	Source string `json:"source"`
	Link   string `json:"link,omitempty"`
	Date   string `json:"date"`
}
