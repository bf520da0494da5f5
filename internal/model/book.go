package model

// Book is a distinct (title, author) pair.  Quantity counts the open
// postings for it and never goes below zero.
type Book struct {
	ID        uint64 `json:"book_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	Publisher string `json:"publisher"`
	ImgPath   string `json:"img_path"`
	Quantity  uint32 `json:"quantity"`
}
