package docs

import (
	"bufio"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// This test keeps the documentation in sync with itself: every topic listed
// in readme.md must load, every topic file must be listed in readme.md, and
// every topic must start with a level-1 heading.

func Test_readmeListsEveryTopic(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	listed := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed[strings.TrimSpace(m[1])] = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("topic %q is listed in readme.md but does not load: %v", topic, err)
		}
	}

	topics, err := All()
	if err != nil {
		t.Fatalf("All() unexpected error: %v", err)
	}
	for _, topic := range topics {
		if !listed[topic] {
			t.Errorf("topic %q exists but is not listed in readme.md", topic)
		}
	}
}

func Test_everyTopicStartsWithHeading(t *testing.T) {
	topics, err := All()
	if err != nil {
		t.Fatalf("All() unexpected error: %v", err)
	}
	parser := goldmark.DefaultParser()
	for _, topic := range topics {
		content, err := Topic(topic)
		if err != nil {
			t.Fatalf("Topic(%q) unexpected error: %v", topic, err)
		}
		root := parser.Parse(text.NewReader([]byte(content)))
		first := root.FirstChild()
		h, ok := first.(*ast.Heading)
		if !ok || h.Level != 1 {
			t.Errorf("topic %q does not start with a level-1 heading", topic)
		}
	}
}
