package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// Template file names inside a theme directory.
const (
	ArticleTemplateFile = "article.html"
	CardTemplateFile    = "card.html"
	ProfileTemplateFile = "profile.md"
)

// TemplateSet holds the mustache templates of one theme.
// Article wraps every page, including the index. Card renders the article
// listing. Profile is optional and renders the profile README.
type TemplateSet struct {
	Name    string // Theme name or directory path
	Article string
	Card    string
	Profile string // Empty when the theme has no profile template
}

// HasProfile reports whether the theme ships a profile template.
func (ts *TemplateSet) HasProfile() bool {
	return ts.Profile != ""
}

// DefaultTemplateSetName is the name of the built-in theme.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "default"

// readTemplateSet assembles a theme from its directory through read, which
// receives a bare file name and must report missing files with an error
// matching fs.ErrNotExist.
func readTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	article, articleErr := read(ArticleTemplateFile)
	card, cardErr := read(CardTemplateFile)
	profile, profileErr := read(ProfileTemplateFile)

	articleMissing := errors.Is(articleErr, fs.ErrNotExist)
	cardMissing := errors.Is(cardErr, fs.ErrNotExist)

	// Neither required file: the theme does not exist at all
	if articleMissing && cardMissing {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}

	for _, r := range []struct {
		file string
		err  error
	}{
		{ArticleTemplateFile, articleErr},
		{CardTemplateFile, cardErr},
		{ProfileTemplateFile, profileErr},
	} {
		if r.err != nil && !errors.Is(r.err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, r.file, r.err)
		}
	}

	if articleMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, ArticleTemplateFile)
	}
	if cardMissing {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, CardTemplateFile)
	}

	return &TemplateSet{
		Name:    name,
		Article: string(article),
		Card:    string(card),
		Profile: string(profile),
	}, nil
}
