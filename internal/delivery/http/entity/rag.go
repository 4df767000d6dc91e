package entity

// Request to ask the document base directly
type RagQueryRequest struct {
	Question   string `json:"question" validate:"required"`
	Collection string `json:"collection,omitempty"`
	TopK       int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type RagQueryResponse struct {
	Answer  string            `json:"answer"`
	Sources []SourceReference `json:"sources,omitempty"`
}

// Request to fetch raw document chunks
type RagRetrieveRequest struct {
	Query      string `json:"query" validate:"required"`
	Collection string `json:"collection,omitempty"`
	TopK       int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type RagChunkRead struct {
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	FileName string  `json:"file_name,omitempty"`
	Page     *int    `json:"page,omitempty"`
}

type RagRetrieveResponse struct {
	Results []RagChunkRead `json:"results"`
	Total   int            `json:"total"`
}
