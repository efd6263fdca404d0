package simhash

import (
	"strings"

	"golang.org/x/net/html"
)

// shingleWidth is the n-gram size over the tag sequence.
const shingleWidth = 3

// skippedTags carry no layout; their children are ignored too.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
}

// OfStructure fingerprints the layout of a document: the sequence of open
// tags, shingled, with text and attributes ignored. Two renders of the
// same theme land close together even when every word differs.
func OfStructure(rawHTML string) Fingerprint {
	tags := layoutTags(rawHTML)
	if len(tags) == 0 {
		return 0
	}
	shingles := shingle(tags, shingleWidth)
	if len(shingles) == 0 {
		return Sum(tags)
	}
	return Sum(shingles)
}

// layoutTags collects open tag names in document order, skipping the
// subtrees of non-layout elements.
func layoutTags(rawHTML string) []string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	var (
		tags []string
		skip string
		// depth of nested skipped tags with the same name
		depth int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken:
			tn, _ := z.TagName()
			name := string(tn)
			if skip != "" {
				if name == skip {
					depth++
				}
				continue
			}
			if skippedTags[name] {
				skip, depth = name, 1
				continue
			}
			tags = append(tags, name)
		case html.SelfClosingTagToken:
			if skip != "" {
				continue
			}
			tn, _ := z.TagName()
			if !skippedTags[string(tn)] {
				tags = append(tags, string(tn))
			}
		case html.EndTagToken:
			if skip == "" {
				continue
			}
			tn, _ := z.TagName()
			if string(tn) == skip {
				depth--
				if depth == 0 {
					skip = ""
				}
			}
		}
	}
}

func shingle(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		out = append(out, strings.Join(tokens[i:i+n], "_"))
	}
	return out
}
