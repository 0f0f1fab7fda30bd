package domain

// DayLayout is the calendar-day format used by index records and drafts.
const DayLayout = "2006-01-02"

// MinuteLayout is the wall-clock format used for scheduled and created stamps.
const MinuteLayout = "2006-01-02 15:04"

// NewsItem is an archived article. Records written by older runs may carry the
// source under "url" instead of "source_url".
type NewsItem struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url,omitempty"`
	LegacyURL string `json:"url,omitempty"`
	Source    string `json:"source"`
	Score     int    `json:"score"`
	// Image is the lead image found while extracting the page.
	Image     string `json:"image,omitempty"`
}

// Link returns the stored source URL, falling back to the legacy field.
func (n NewsItem) Link() string {
	if n.SourceURL != "" {
		return n.SourceURL
	}
	return n.LegacyURL
}

// FeedEntry is a single entry produced by a feed source.
type FeedEntry struct {
	Title string
	Link  string
}

// Extracted is the readable content of an article page.
type Extracted struct {
	Title string
	Text  string
	Image string
}
