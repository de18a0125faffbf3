// Package extract turns uploaded or linked documents into plain text for
// quiz generation.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

const userAgent = "QuizZable/1.0 (+https://github.com/quizzable)"

var ErrEmptyDocument = errors.New("document contains no extractable text")

// FromUpload extracts text from an uploaded file, dispatching on the file
// extension and a content sniff. Returns the text and the detected source
// kind ("pdf" or "text").
func FromUpload(filename string, data []byte) (string, string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") || bytes.HasPrefix(data, []byte("%PDF-")) {
		text, err := FromPDF(data)
		return text, "pdf", err
	}
	if !utf8.Valid(data) {
		return "", "text", fmt.Errorf("%s: not valid UTF-8 text", filename)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", "text", ErrEmptyDocument
	}
	return text, "text", nil
}

// FromPDF extracts the text of every readable page. Pages the parser
// cannot decode are skipped rather than failing the whole document. The
// pdf library panics on some malformed files; that is contained here.
func FromPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf extraction failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyDocument
	}
	return out, nil
}

// FromURL fetches a web page and returns its visible body text with
// script, style, and chrome elements removed.
func FromURL(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		return "", ErrEmptyDocument
	}

	text := collapseWhitespace(body.Text())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
