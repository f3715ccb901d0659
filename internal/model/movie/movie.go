package movie

import (
	"crypto/sha256"
	"encoding/hex"
)

// Movie is the full record served by the detail route.
type Movie struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary is the listing projection of a movie. It never carries the description.
type Summary struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// Entry pairs an identifier with its record; Seed returns entries in catalog order.
type Entry struct {
	ID    string
	Movie Movie
}

// Seed provides the fixed catalog served for the lifetime of the process.
func Seed() []Entry {
	return []Entry{
		{ID: "123", Movie: Movie{Title: "Top Gun: Maverick", Description: "Fighter planes"}},
		{ID: "456", Movie: Movie{Title: "Sonic the Hedgehog", Description: "Blue Sega character"}},
		{ID: "789", Movie: Movie{Title: "A Quiet Place", Description: "Scary monsters"}},
		{ID: "990", Movie: Movie{Title: "Network", Description: "Science hacks"}},
		{ID: "991", Movie: Movie{Title: "Social network", Description: "Life hacks"}},
		{ID: "992", Movie: Movie{Title: "Social network 2", Description: "Life hacks 2"}},
		{ID: "999", Movie: Movie{Title: "Transformer", Description: "Fiction ages"}},
	}
}

// Fingerprint identifies a catalog by content. Any change to ids, titles,
// descriptions or order yields a different value.
func Fingerprint(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		for _, field := range []string{e.ID, e.Movie.Title, e.Movie.Description} {
			h.Write([]byte(field))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}
