package model

// Posting is one physical copy listed for sale.
type Posting struct {
	ID       uint64 `json:"post_id"`
	BookID   uint64 `json:"book_id"`
	Price    Price  `json:"price"`
	Cond     uint8  `json:"cond"`
	Descript string `json:"descript"`
}

// PostingDetail is a posting joined with its book, the shape every listing
// endpoint returns.  JSON keys match the column names.
type PostingDetail struct {
	PostID    uint64 `json:"post_id"`
	BookID    uint64 `json:"book_id"`
	Price     Price  `json:"price"`
	Cond      uint8  `json:"cond"`
	Descript  string `json:"descript"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	Publisher string `json:"publisher"`
	ImgPath   string `json:"img_path"`
	Quantity  uint32 `json:"quantity"`
}
