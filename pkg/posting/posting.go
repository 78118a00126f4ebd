// Package posting resolves the job posting given on the command line.
package posting

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/xrsl/texcv/pkg/log"
)

// URL scheme prefixes recognized as links rather than file paths.
var schemes = []string{"http://", "https://"}

// Posting is the job advertisement handed to the prompts.
type Posting struct {
	URL  string // empty when read from a file
	Text string // the URL itself unless fetched or read from a file
}

// IsURL reports whether input starts with a recognized URL scheme.
func IsURL(input string) bool {
	lower := strings.ToLower(input)
	for _, s := range schemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// ParseJoblink returns a URL unchanged and the contents of anything else,
// which is treated as a local file path.
func ParseJoblink(input string) (text string, err error) {
	if IsURL(input) {
		return input, nil
	}

	var data []byte
	data, err = os.ReadFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to read job posting %s", input)
		return text, err
	}

	text = string(data)
	if strings.TrimSpace(text) == "" {
		err = errors.Errorf("job posting %s is empty", input)
		return text, err
	}
	return text, nil
}

// Resolve builds the Posting for input. With fetch set, a URL is downloaded
// and reduced to its visible text; a failed download falls back to the URL.
func Resolve(ctx context.Context, input string, fetch bool, client *http.Client, logger *slog.Logger) (p Posting, err error) {
	logger = log.OrDiscard(logger)

	var text string
	text, err = ParseJoblink(input)
	if err != nil {
		return p, err
	}
	if !IsURL(input) {
		return Posting{Text: text}, nil
	}

	p = Posting{URL: input, Text: input}
	if !fetch {
		return p, nil
	}

	fetched, fetchErr := Fetch(ctx, input, client)
	if fetchErr != nil {
		logger.Warn("could not fetch job posting, using the link instead", "url", input, "error", fetchErr)
		return p, nil
	}
	logger.Info("fetched job posting", "url", input, "chars", len(fetched))
	p.Text = fetched
	return p, nil
}

// Fetch downloads url and extracts the visible text of the page.
func Fetch(ctx context.Context, url string, client *http.Client) (text string, err error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		err = errors.Wrap(err, "invalid URL")
		return text, err
	}
	req.Header.Set("User-Agent", "texcv/1.0")

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "fetch failed")
		return text, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("fetch failed: HTTP %d", resp.StatusCode)
		return text, err
	}

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "read failed")
		return text, err
	}

	return CleanHTML(string(body))
}

// CleanHTML strips scripts, styles and page chrome and returns the remaining
// text with blank lines removed.
func CleanHTML(html string) (text string, err error) {
	var doc *goquery.Document
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		err = errors.Wrap(err, "failed to parse HTML")
		return text, err
	}

	doc.Find("script, style, nav, footer, header").Remove()

	var cleaned []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	text = strings.Join(cleaned, "\n")
	if text == "" {
		err = errors.New("page has no text")
		return text, err
	}
	return text, nil
}
