package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

const listingHTML = `<html><body><pre>
<a href="../">../</a>
<a href="?C=N;O=D">Name</a>
<a href="11.4.2/">11.4.2/</a>
<a href="12.4.1/">12.4.1/</a>
<a href="redistrib_12.4.1.json">redistrib_12.4.1.json</a>
<a href="https://developer.nvidia.com/other">other</a>
</pre></body></html>`

func TestLinks(t *testing.T) {
	hrefs := Links(listingHTML)
	want := []string{"../", "?C=N;O=D", "11.4.2/", "12.4.1/", "redistrib_12.4.1.json", "https://developer.nvidia.com/other"}
	if !reflect.DeepEqual(hrefs, want) {
		t.Errorf("Links() = %v, want %v", hrefs, want)
	}
}

func TestLinksFallback(t *testing.T) {
	// No anchors survive the parse of an empty document, so the regex
	// fallback runs and finds nothing.
	if hrefs := Links("<html></html>"); len(hrefs) != 0 {
		t.Errorf("Links() on empty document = %v, want none", hrefs)
	}

	// Raw text with href attributes still yields links.
	hrefs := Links(`href="a.run" junk href="b.run"`)
	want := []string{"a.run", "b.run"}
	if !reflect.DeepEqual(hrefs, want) {
		t.Errorf("fallback Links() = %v, want %v", hrefs, want)
	}
}

func TestListingEntries(t *testing.T) {
	entries := ListingEntries(Links(listingHTML))
	want := []string{"11.4.2/", "12.4.1/", "redistrib_12.4.1.json"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("ListingEntries() = %v, want %v", entries, want)
	}
}

func TestFilesAndDirs(t *testing.T) {
	hrefs := Links(listingHTML)

	if files, want := Files(hrefs), []string{"redistrib_12.4.1.json"}; !reflect.DeepEqual(files, want) {
		t.Errorf("Files() = %v, want %v", files, want)
	}
	if dirs, want := Dirs(hrefs), []string{"11.4.2", "12.4.1"}; !reflect.DeepEqual(dirs, want) {
		t.Errorf("Dirs() = %v, want %v", dirs, want)
	}
}

func TestFetchLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	hrefs, err := FetchLinks(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("FetchLinks() error: %v", err)
	}
	if len(hrefs) != 6 {
		t.Errorf("FetchLinks() returned %d links, want 6", len(hrefs))
	}

	if _, err := FetchLinks(context.Background(), server.Client(), server.URL+"/missing"); err == nil {
		t.Error("FetchLinks() on 404 should fail")
	}
}
