package pipeline

import (
	"reflect"
	"strings"
	"testing"
)

func TestInjectAnchors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantHTML     string
		wantHeadings []Heading
	}{
		{
			name:         "empty HTML",
			html:         "",
			wantHTML:     "",
			wantHeadings: nil,
		},
		{
			name:         "no headings",
			html:         "<p>Just a paragraph</p>",
			wantHTML:     "<p>Just a paragraph</p>",
			wantHeadings: nil,
		},
		{
			name:         "single h2",
			html:         "<h2>Hello World</h2>",
			wantHTML:     `<h2><a href="#hello-world">Hello World</a></h2>`,
			wantHeadings: []Heading{{Level: 2, Slug: "hello-world", Text: "Hello World"}},
		},
		{
			name:     "multiple headings keep document order",
			html:     "<h1>A</h1>\n<p>x</p>\n<h3>B c</h3>",
			wantHTML: "<h1><a href=\"#a\">A</a></h1>\n<p>x</p>\n<h3><a href=\"#b-c\">B c</a></h3>",
			wantHeadings: []Heading{
				{Level: 1, Slug: "a", Text: "A"},
				{Level: 3, Slug: "b-c", Text: "B c"},
			},
		},
		{
			name:         "heading with nested markup is skipped",
			html:         "<h2>Use <code>go</code></h2>",
			wantHTML:     "<h2>Use <code>go</code></h2>",
			wantHeadings: nil,
		},
		{
			name:         "heading with attributes is skipped",
			html:         `<h2 id="x">Title</h2>`,
			wantHTML:     `<h2 id="x">Title</h2>`,
			wantHeadings: nil,
		},
		{
			name:         "mismatched levels are skipped",
			html:         "<h2>Broken</h3>",
			wantHTML:     "<h2>Broken</h3>",
			wantHeadings: nil,
		},
		{
			name:         "entities are decoded for the slug and kept in the body",
			html:         "<h2>Q&amp;A</h2>",
			wantHTML:     `<h2><a href="#qa">Q&amp;A</a></h2>`,
			wantHeadings: []Heading{{Level: 2, Slug: "qa", Text: "Q&A"}},
		},
		{
			name:         "non-ASCII slug is percent-encoded",
			html:         "<h2>你好 世界</h2>",
			wantHTML:     `<h2><a href="#%E4%BD%A0%E5%A5%BD-%E4%B8%96%E7%95%8C">你好 世界</a></h2>`,
			wantHeadings: []Heading{{Level: 2, Slug: "你好-世界", Text: "你好 世界"}},
		},
		{
			name:         "h6 gets an anchor",
			html:         "<h6>Deep</h6>",
			wantHTML:     `<h6><a href="#deep">Deep</a></h6>`,
			wantHeadings: []Heading{{Level: 6, Slug: "deep", Text: "Deep"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotHTML, gotHeadings := InjectAnchors(tt.html)
			if gotHTML != tt.wantHTML {
				t.Errorf("InjectAnchors() html = %q, want %q", gotHTML, tt.wantHTML)
			}
			if !reflect.DeepEqual(gotHeadings, tt.wantHeadings) {
				t.Errorf("InjectAnchors() headings = %+v, want %+v", gotHeadings, tt.wantHeadings)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"simple", "Hello World", "hello-world"},
		{"punctuation dropped", "What's new?", "whats-new"},
		{"hyphens kept", "pre-built images", "pre-built-images"},
		{"whitespace collapsed", "  a \t b  ", "a-b"},
		{"digits kept", "Go 1.22 Release", "go-122-release"},
		{"CJK letters kept", "你好 World", "你好-world"},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Slugify(tt.input)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Hello World",
		"What's new in Go 1.22?",
		"  spaced   out  ",
		"你好, 世界!",
		"a--b",
		"Ünïcödé Títle",
	}

	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestEncodeSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slug string
		want string
	}{
		{"hello-world", "hello-world"},
		{"你好", "%E4%BD%A0%E5%A5%BD"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := EncodeSlug(tt.slug); got != tt.want {
			t.Errorf("EncodeSlug(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestBuildTOC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		headings []Heading
		want     string
	}{
		{
			name:     "no headings",
			headings: nil,
			want:     "",
		},
		{
			name:     "only deep headings",
			headings: []Heading{{Level: 4, Slug: "a", Text: "A"}, {Level: 5, Slug: "b", Text: "B"}},
			want:     "",
		},
		{
			name:     "single h1",
			headings: []Heading{{Level: 1, Slug: "a", Text: "A"}},
			want:     `<div class="table-of-contents"><ul><li><a href="#a">A</a></li></ul></div>`,
		},
		{
			name:     "h2 first opens a nested list",
			headings: []Heading{{Level: 2, Slug: "a", Text: "A"}},
			want:     `<div class="table-of-contents"><ul><ul><li><a href="#a">A</a></li></ul></ul></div>`,
		},
		{
			name: "nesting follows levels",
			headings: []Heading{
				{Level: 1, Slug: "a", Text: "A"},
				{Level: 2, Slug: "b", Text: "B"},
				{Level: 1, Slug: "c", Text: "C"},
			},
			want: `<div class="table-of-contents"><ul>` +
				`<li><a href="#a">A</a></li>` +
				`<ul><li><a href="#b">B</a></li></ul>` +
				`<li><a href="#c">C</a></li>` +
				`</ul></div>`,
		},
		{
			name: "h4 and deeper are skipped",
			headings: []Heading{
				{Level: 1, Slug: "a", Text: "A"},
				{Level: 4, Slug: "d", Text: "D"},
			},
			want: `<div class="table-of-contents"><ul><li><a href="#a">A</a></li></ul></div>`,
		},
		{
			name:     "text is escaped and slug encoded",
			headings: []Heading{{Level: 1, Slug: "qa-你", Text: "Q&A 你"}},
			want:     `<div class="table-of-contents"><ul><li><a href="#qa-%E4%BD%A0">Q&amp;A 你</a></li></ul></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BuildTOC(tt.headings)
			if got != tt.want {
				t.Errorf("BuildTOC() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTOC_Balanced(t *testing.T) {
	t.Parallel()

	sequences := [][]int{
		{1, 2, 3, 2, 1},
		{3, 1},
		{2, 2, 3, 3, 1},
		{1, 3, 2, 6, 1, 2},
		{3, 3, 3},
	}

	for _, levels := range sequences {
		headings := make([]Heading, len(levels))
		for i, l := range levels {
			headings[i] = Heading{Level: l, Slug: "s", Text: "t"}
		}

		toc := BuildTOC(headings)
		opens := strings.Count(toc, "<ul>")
		closes := strings.Count(toc, "</ul>")
		if opens != closes {
			t.Errorf("levels %v: %d <ul> vs %d </ul> in %q", levels, opens, closes, toc)
		}

		depth := 0
		for i := 0; i < len(toc); i++ {
			switch {
			case strings.HasPrefix(toc[i:], "<ul>"):
				depth++
			case strings.HasPrefix(toc[i:], "</ul>"):
				depth--
			}
			if depth < 0 {
				t.Fatalf("levels %v: list closed before opened in %q", levels, toc)
			}
		}
	}
}

func TestInjectTOC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		toc  string
		want string
	}{
		{
			name: "no placeholder",
			html: "<p>x</p>",
			toc:  "<div>toc</div>",
			want: "<p>x</p>",
		},
		{
			name: "single placeholder",
			html: TOCPlaceholder + "\n<h1>A</h1>",
			toc:  "<div>toc</div>",
			want: "<div>toc</div>\n<h1>A</h1>",
		},
		{
			name: "every placeholder replaced",
			html: TOCPlaceholder + "<p>x</p>" + TOCPlaceholder,
			toc:  "T",
			want: "T<p>x</p>T",
		},
		{
			name: "empty toc removes placeholder",
			html: "<p>a</p>" + TOCPlaceholder,
			toc:  "",
			want: "<p>a</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectTOC(tt.html, tt.toc); got != tt.want {
				t.Errorf("InjectTOC() = %q, want %q", got, tt.want)
			}
		})
	}
}
