package catalog

import "time"

// Book は books テーブルの1行を表す
type Book struct {
	ID          string
	Title       string
	Category    string
	Genres      []string
	Authors     []string
	Description string
	Copies      int
	Available   int
	CreatedAt   time.Time
}

// DB行に対応（スキャン用）。genres / authors は JSON 配列の文字列
type bookRow struct {
	ID          string    `db:"book_id"`
	Title       string    `db:"title"`
	Category    string    `db:"category"`
	Genres      string    `db:"genres"`
	Authors     string    `db:"authors"`
	Description string    `db:"description"`
	Copies      int       `db:"copies"`
	Available   int       `db:"available"`
	CreatedAt   time.Time `db:"created_at"`
}

var bookColumns = []any{
	"book_id", "title", "category", "genres", "authors", "description", "copies", "available", "created_at",
}

func (r bookRow) toModel() (Book, error) {
	b := Book{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Copies:      r.Copies,
		Available:   r.Available,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if err := json.UnmarshalFromString(r.Genres, &b.Genres); err != nil {
		return Book{}, err
	}
	if err := json.UnmarshalFromString(r.Authors, &b.Authors); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (b Book) toDTO() BookResponse {
	return BookResponse{
		BookID:      b.ID,
		Title:       b.Title,
		Category:    b.Category,
		Genres:      nonNil(b.Genres),
		Authors:     nonNil(b.Authors),
		Description: b.Description,
		Copies:      b.Copies,
		Available:   b.Available,
		CreatedAt:   b.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
