// Package assets provides the blog themes: mustache page templates and
// stylesheets. Themes can be loaded from embedded files or from a custom
// directory that overrides them.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - themes compiled into the binary ("default")
//	    ├── FilesystemLoader  - themes from the configured assets_path
//	    └── AssetResolver     - custom first, embedded as fallback
//
// A custom directory only needs the files it overrides: a missing theme or
// stylesheet falls back to the embedded copy, while an incomplete theme is
// an error.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # Site stylesheet
//	└── templates/
//	    └── {name}/
//	        ├── article.html     # Page shell, used for articles and the index
//	        ├── card.html        # Article listing on the index page
//	        └── profile.md       # Optional profile README
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
