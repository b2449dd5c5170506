package media

import (
	"path"
	"strings"
)

// Placeholder returns the upload placeholder of name: [[upload:<name>]].
func Placeholder(name string) string {
	return "[[upload:" + name + "]]"
}

// PlaceholderFor returns the placeholder of an uploaded file, named after its base name without extension.
func PlaceholderFor(filename string) string {
	base := path.Base(filename)
	return Placeholder(strings.TrimSuffix(base, path.Ext(base)))
}

// Substitute replaces every occurrence of token in text with url.
// It reports whether any replacement was made.
func Substitute(text, token, url string) (string, bool) {
	if token == "" || !strings.Contains(text, token) {
		return text, false
	}
	return strings.ReplaceAll(text, token, url), true
}

var altReplacer = strings.NewReplacer("[", "", "]", "", "\n", " ")

// Snippet renders asset as a Markdown image, or a plain link for videos.
func Snippet(asset Asset, alt string) string {
	alt = altReplacer.Replace(strings.TrimSpace(alt))
	if asset.ResourceType == ResourceVideo {
		if alt == "" {
			alt = asset.URL
		}
		return "[" + alt + "](" + asset.URL + ")"
	}
	return "![" + alt + "](" + asset.URL + ")"
}
