package pocketbook

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regex patterns for the begin locator, e.g.
// "pbr:/word?page=243&offs=534#epubcfi(/6/96!/4/40/1:404)"
var (
	pagePattern    = regexp.MustCompile(`page=(\d+)`)
	epubCFIPattern = regexp.MustCompile(`epubcfi\(([^)]+)\)`)
)

// quotationPayload is the JSON object stored in a bm.quotation tag value.
type quotationPayload struct {
	Text  string `json:"text"`
	Begin string `json:"begin"`
}

// DecodeQuotation parses a quotation tag payload into a Highlight.
// Malformed JSON and blank text are not errors: such rows are simply not
// highlights, so the second return value is false and the row is skipped.
func DecodeQuotation(row HighlightRow) (Highlight, bool) {
	var payload quotationPayload
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		return Highlight{}, false
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return Highlight{}, false
	}

	highlight := Highlight{
		Text:      text,
		Timestamp: row.TimeAlt,
	}

	if payload.Begin != "" {
		if m := pagePattern.FindStringSubmatch(payload.Begin); m != nil {
			page, err := strconv.Atoi(m[1])
			if err == nil {
				highlight.Page = page
			}
		}
		if m := epubCFIPattern.FindStringSubmatch(payload.Begin); m != nil {
			highlight.EpubCFI = fmt.Sprintf("epubcfi(%s)", m[1])
		}
	}

	return highlight, true
}
