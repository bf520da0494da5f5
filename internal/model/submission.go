package model

// Submission is a seller's request to list a book, pending moderation.
// The validate tags mirror the column widths and CHECK constraints of the
// submissions table.  NOT NULL text columns accept "", so an empty string is
// valid here; a field missing from the request is caught when binding.
type Submission struct {
	ID        uint64 `json:"sub_id"`
	Title     string `json:"title" validate:"max=255"`
	Author    string `json:"author" validate:"max=255"`
	Genre     string `json:"genre" validate:"max=64"`
	Publisher string `json:"publisher" validate:"max=255"`
	Price     Price  `json:"price" validate:"gte=0,lte=9999999999"`
	Cond      uint8  `json:"cond" validate:"min=1,max=10"`
	Descript  string `json:"descript"`
}

// Posting returns the posting this submission becomes once approved.
func (s Submission) Posting(bookID uint64) Posting {
	return Posting{BookID: bookID, Price: s.Price, Cond: s.Cond, Descript: s.Descript}
}
