package domain

// TimelinePoint is one month of finished books.
type TimelinePoint struct {
	Month string `json:"month"` // "YYYY-MM"
	Count int    `json:"count"`
}

// DecadeBucket is a publication-era histogram bucket.
// Decade is floor(publicationYear/10)*10, e.g. 1990.
type DecadeBucket struct {
	Decade int `json:"decade"`
	Count  int `json:"count"`
}

// TagCount is a tag with its frequency in a book subset.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// LibraryStats aggregates the derived statistics views over a filtered
// book subset. All fields are pure projections of a collection snapshot.
type LibraryStats struct {
	TotalBooks    int             `json:"total_books"`
	FinishedBooks int             `json:"finished_books"`
	Timeline      []TimelinePoint `json:"timeline"`
	Decades       []DecadeBucket  `json:"decades"`
	TagFrequency  []TagCount      `json:"tag_frequency"`

	// AverageBooksPerMonth is finished count divided by the inclusive
	// month span from earliest to latest finished month (minimum 1).
	AverageBooksPerMonth float64 `json:"average_books_per_month"`
}

// BookMetadata is a candidate record from an external catalog provider.
type BookMetadata struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Source          string   `json:"source"` // Provider that produced this candidate
}
