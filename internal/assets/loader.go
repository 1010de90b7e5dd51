package assets

// AssetLoader defines the contract for loading theme stylesheets and
// template sets.
type AssetLoader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the templates of a theme by name.
	// Returns ErrTemplateSetNotFound if the theme doesn't exist.
	// Returns ErrIncompleteTemplateSet if a required template is missing.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplateSet(name string) (*TemplateSet, error)

	// Themes lists the template set names the loader can serve.
	Themes() []string
}
