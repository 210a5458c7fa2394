package models

type IndexPostRequest struct {
	// Noticia is the news article text the copy was written for.
	Noticia string `json:"noticia"`

	// Copy is the previously published social media copy.
	Copy string `json:"copy"`
}

type IndexPostResponse struct {
	Message string `json:"message"`
}
