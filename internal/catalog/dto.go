package catalog

import "time"

const CategoryAll = "All"

type CreateBookRequest struct {
	Title       string   `json:"title" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Genres      []string `json:"genres"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Copies      int      `json:"copies"`
}

type AddCopiesRequest struct {
	Copies int `json:"copies" binding:"required"`
}

type BookResponse struct {
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Genres      []string  `json:"genres"`
	Authors     []string  `json:"authors"`
	Description string    `json:"description"`
	Copies      int       `json:"copies"`
	Available   int       `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListBooksResponse struct {
	Items            []BookResponse `json:"items"`
	SelectedCategory string         `json:"selected_category"`
	Categories       []string       `json:"categories"`
}
