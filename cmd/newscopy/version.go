package main

import (
	"context"
	"fmt"

	newscopy "github.com/hyperhue-studio/news-copy-backend"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(newscopy.Version)
	return nil
}
