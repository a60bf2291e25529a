// Package docs embeds the built-in help topics shown by `duet docs`.
package docs

import (
	"embed"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one entry of the `duet docs` index: the name used to request it
// and the document's own title as a summary.
type Topic struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Index lists the available topics, sorted by name, each summarized by the
// first heading of its document.
func Index() []Topic {
	entries, err := contentFS.ReadDir("content")
	if err != nil {
		return nil
	}
	topics := make([]Topic, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if !ok || name == "" {
			continue
		}
		body, err := contentFS.ReadFile("content/" + e.Name())
		if err != nil {
			continue
		}
		topics = append(topics, Topic{Name: name, Summary: firstHeading(string(body))})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics
}

// Get returns the markdown body of a topic.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "", false
	}
	b, err := contentFS.ReadFile("content/" + topic + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if after, ok := strings.CutPrefix(line, "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(after, "#"))
		}
	}
	return ""
}
