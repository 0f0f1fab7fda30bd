package domain

// DraftMetadata describes a pending blog post whose body lives in the drafts area.
// Scheduled is nil for drafts that are only published by hand.
type DraftMetadata struct {
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Date          string  `json:"date"`
	Excerpt       string  `json:"excerpt"`
	Author        string  `json:"author"`
	SourceURL     string  `json:"source_url"`
	SourceName    string  `json:"source_name"`
	Score         int     `json:"score"`
	FeaturedImage string  `json:"featured_image"`
	Scheduled     *string `json:"scheduled"`
	Created       string  `json:"created"`
}

// PublishedPost is the trimmed record kept in the public manifest.
type PublishedPost struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Excerpt       string `json:"excerpt"`
	Author        string `json:"author"`
	FeaturedImage string `json:"featured_image,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
}

// ToPublished trims draft metadata down to the public record.
func (d DraftMetadata) ToPublished(defaultAuthor string) PublishedPost {
	author := d.Author
	if author == "" {
		author = defaultAuthor
	}
	return PublishedPost{
		Slug:          d.Slug,
		Title:         d.Title,
		Date:          d.Date,
		Excerpt:       d.Excerpt,
		Author:        author,
		FeaturedImage: d.FeaturedImage,
		SourceURL:     d.SourceURL,
	}
}
