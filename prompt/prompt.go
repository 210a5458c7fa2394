// Package prompt builds the generation prompts for each target platform.
// Composition is pure: it combines the extracted article content with the
// reference copy the store returned, and nothing else.
package prompt

import (
	"fmt"
	"strings"
)

// ReferenceFields selects which parts of a retrieved example are included in
// the reference block.
type ReferenceFields string

const (
	ReferenceNoticia ReferenceFields = "noticia"
	ReferenceCopy    ReferenceFields = "copy"
	ReferenceBoth    ReferenceFields = "both"
)

// Reference is a previously published example retrieved from the store.
type Reference struct {
	Noticia string
	Copy    string
}

const facebookPrompt = `Write a Facebook post for the news article below: a catchy title followed by a short paragraph that makes readers want to open the article. Reply with the post text only.

%s`

const twitterPrompt = `Write a single-sentence tweet with one fitting emoji for the news article below. Keep it under 250 characters. Reply with the tweet text only.

%s`

const wppPrompt = `Write a short, punchy one-line title for the news article below, suitable for a WhatsApp broadcast. Reply with the title only.

%s`

func New(fields ReferenceFields) Composer {
	return Composer{
		fields: fields,
	}
}

type Composer struct {
	fields ReferenceFields
}

// Facebook produces the title-plus-paragraph style prompt.
func (c Composer) Facebook(title, description string, refs []Reference) string {
	return c.compose(facebookPrompt, title, description, refs)
}

// Twitter produces the single-sentence-with-emoji style prompt.
func (c Composer) Twitter(title, description string, refs []Reference) string {
	return c.compose(twitterPrompt, title, description, refs)
}

// WPP produces the short-title style prompt.
func (c Composer) WPP(title, description string, refs []Reference) string {
	return c.compose(wppPrompt, title, description, refs)
}

func (c Composer) compose(template, title, description string, refs []Reference) string {
	var sb strings.Builder
	sb.WriteString(c.referenceBlock(refs))
	article := title
	if description != "" {
		article = title + "\n" + description
	}
	sb.WriteString(fmt.Sprintf(template, article))
	return sb.String()
}

func (c Composer) referenceBlock(refs []Reference) string {
	if len(refs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Match the voice and tone of these previously published examples:\n\n")
	for i, ref := range refs {
		sb.WriteString(fmt.Sprintf("Example %d:\n", i+1))
		if c.fields == ReferenceNoticia || c.fields == ReferenceBoth {
			sb.WriteString("Article: ")
			sb.WriteString(ref.Noticia)
			sb.WriteString("\n")
		}
		if c.fields == ReferenceCopy || c.fields == ReferenceBoth {
			sb.WriteString("Copy: ")
			sb.WriteString(ref.Copy)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
