package client

import (
	"context"

	"github.com/a-h/jsonapi"
	"github.com/hyperhue-studio/news-copy-backend/models"
)

func New(baseURL string) Client {
	return Client{
		baseURL: baseURL,
	}
}

type Client struct {
	baseURL string
}

func (c Client) IndexPost(ctx context.Context, req models.IndexPostRequest) (resp models.IndexPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("indexar").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.IndexPostRequest, models.IndexPostResponse](ctx, url, req)
}

func (c Client) CopiesPost(ctx context.Context, req models.CopiesPostRequest) (resp models.CopiesPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("generar_copy").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.CopiesPostRequest, models.CopiesPostResponse](ctx, url, req)
}

func (c Client) SimilarPost(ctx context.Context, req models.SimilarPostRequest) (resp models.SimilarPostResponse, err error) {
	url, err := jsonapi.URL(c.baseURL).Path("buscar_similar").String()
	if err != nil {
		return resp, err
	}
	return jsonapi.Post[models.SimilarPostRequest, models.SimilarPostResponse](ctx, url, req)
}
