package frontier

import "testing"

func TestAdd_DuplicateRejected(t *testing.T) {
	f, err := New("https://example.com/", DefaultOptions(3, 100))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Add("https://example.com/a", 1) {
		t.Fatal("expected first add to succeed")
	}
	if f.Add("https://example.com/a", 1) {
		t.Fatal("expected duplicate add to fail")
	}
}

func TestAdd_SameOriginEnforced(t *testing.T) {
	f, _ := New("https://example.com/", DefaultOptions(3, 100))
	if f.Add("https://evil.example.com/x", 1) {
		t.Fatal("expected cross-origin add to be rejected")
	}
}

func TestAdd_DepthExceeded(t *testing.T) {
	f, _ := New("https://example.com/", Options{SameOrigin: true, MaxDepth: 1, MaxPages: 100, MaxQueued: 1000})
	if f.Add("https://example.com/a", 2) {
		t.Fatal("expected over-depth add to be rejected")
	}
}

func TestNext_NeverExceedsMaxPages(t *testing.T) {
	f, _ := New("https://example.com/", Options{SameOrigin: true, MaxDepth: 3, MaxPages: 2, MaxQueued: 1000})
	f.AddAll([]string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}, 1)

	count := 0
	for {
		if _, ok := f.Next(); !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected exactly 2 yielded entries, got %d", count)
	}
}

func TestAdd_QueueFullRejectsThenSucceedsAfterNext(t *testing.T) {
	f, _ := New("https://example.com/", Options{SameOrigin: true, MaxDepth: 3, MaxPages: 100, MaxQueued: 1})
	if !f.Add("https://example.com/a", 1) {
		t.Fatal("expected first add to succeed")
	}
	if f.Add("https://example.com/b", 1) {
		t.Fatal("expected add beyond max_queued to fail")
	}
	if _, ok := f.Next(); !ok {
		t.Fatal("expected Next to free a slot")
	}
	if !f.Add("https://example.com/b", 1) {
		t.Fatal("expected add to succeed after Next freed a slot")
	}
}

func TestNormalize_StripsFragmentAndSingleTrailingSlash(t *testing.T) {
	got, err := Normalize("https://example.com/path/#section")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/path" {
		t.Errorf("expected trailing slash and fragment stripped, got %s", got)
	}

	root, err := Normalize("https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if root != "https://example.com/" {
		t.Errorf("expected root path preserved, got %s", root)
	}
}

func TestMatchGlob_DoubleStarCrossesSlash(t *testing.T) {
	if !matchGlob("/blog/**", "/blog/2024/01/post") {
		t.Error("expected ** to match across slashes")
	}
	if matchGlob("/blog/*", "/blog/2024/01") {
		t.Error("expected single * not to cross a slash")
	}
}
