// Package scrape extracts links from the directory listings and archive
// pages NVIDIA publishes. The markup is plain enough for an anchor walk,
// with a regex fallback for pages too broken to parse.
package scrape

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/flanksource/commons/logger"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"golang.org/x/net/html"
)

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

// Links returns the href attribute of every anchor in the document. A
// document that fails to parse falls back to a regex scan.
func Links(htmlContent string) []string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		logger.V(2).Infof("Failed to parse HTML, using fallback link scan: %v", err)
		return linksFallback(htmlContent)
	}

	var hrefs []string
	var findLinks func(*html.Node)
	findLinks = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findLinks(c)
		}
	}
	findLinks(doc)

	if len(hrefs) == 0 {
		return linksFallback(htmlContent)
	}
	return hrefs
}

func linksFallback(htmlContent string) []string {
	var hrefs []string
	for _, m := range hrefRe.FindAllStringSubmatch(htmlContent, -1) {
		hrefs = append(hrefs, m[1])
	}
	return hrefs
}

// FetchLinks fetches a page and returns its anchor hrefs.
func FetchLinks(ctx context.Context, client *http.Client, url string) ([]string, error) {
	body, err := setupcudahttp.FetchBody(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Links(string(body)), nil
}

// ListingEntries filters directory-listing hrefs down to plain entries,
// dropping query links, parent references and absolute URLs.
func ListingEntries(hrefs []string) []string {
	var entries []string
	for _, href := range hrefs {
		if strings.Contains(href, "?") || href == "../" || href == ".." {
			continue
		}
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "/") {
			continue
		}
		entries = append(entries, href)
	}
	return entries
}

// Files returns listing entries that are files, excluding subdirectories.
func Files(hrefs []string) []string {
	var files []string
	for _, entry := range ListingEntries(hrefs) {
		if strings.HasSuffix(entry, "/") {
			continue
		}
		files = append(files, entry)
	}
	return files
}

// Dirs returns listing entries that are directories, without the trailing
// slash.
func Dirs(hrefs []string) []string {
	var dirs []string
	for _, entry := range ListingEntries(hrefs) {
		if !strings.HasSuffix(entry, "/") {
			continue
		}
		dirs = append(dirs, strings.TrimSuffix(entry, "/"))
	}
	return dirs
}
