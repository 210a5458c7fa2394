package models

type SimilarPostRequest struct {
	Texto string `json:"texto"`
}

type SimilarPostResponse struct {
	ID       string          `json:"id"`
	Score    float64         `json:"score"`
	Metadata SimilarMetadata `json:"metadata"`
}

type SimilarMetadata struct {
	Noticia string `json:"noticia"`
	Copy    string `json:"copy"`
}
