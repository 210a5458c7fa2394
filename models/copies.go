package models

type CopiesPostRequest struct {
	URL string `json:"url"`
}

type CopiesPostResponse struct {
	Facebook    string      `json:"facebook"`
	Twitter     string      `json:"twitter"`
	WPP         string      `json:"wpp"`
	FoundCopies []FoundCopy `json:"foundCopies,omitempty"`
}

type FoundCopy struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Noticia string  `json:"noticia"`
	Copy    string  `json:"copy"`
}
