package cleanup

import "strings"
import "testing"

func TestClean_RemovesFigcaption(t *testing.T) {
	html := `<div><figure><img src="a.jpg"><figcaption>A caption</figcaption></figure><p>Body text that is long enough to survive cleanup easily here.</p></div>`
	result := Clean(html)
	if strings.Contains(result.HTML, "A caption") {
		t.Error("expected figcaption to be removed")
	}
}

func TestClean_RemovesShortBoilerplate(t *testing.T) {
	html := `<div><p>Advertisement</p><p>This is the real article body and it is long enough to not be treated as boilerplate at all.</p></div>`
	result := Clean(html)
	if strings.Contains(result.Text, "Advertisement") {
		t.Error("expected boilerplate paragraph to be removed")
	}
	if !strings.Contains(result.Text, "real article body") {
		t.Error("expected real content to survive")
	}
}

func TestClean_DedupKeepsLaterOccurrence(t *testing.T) {
	repeated := "This paragraph is long enough to be considered for deduplication across the document structure."
	html := "<div><p>" + repeated + "</p><p>middle</p><p>" + repeated + "</p></div>"
	result := Clean(html)

	if strings.Count(result.Text, repeated) != 1 {
		t.Errorf("expected exactly one surviving occurrence, got %d", strings.Count(result.Text, repeated))
	}
}
