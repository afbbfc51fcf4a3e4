package validation

import (
	"regexp"
	"strings"

	"lessonforge/internal/family"
)

// Extraction is regex-based on purpose: the input is semi-structured natural
// language from a model, not a machine format. Everything regex lives here so
// the matching strategy could be swapped for a hand-written scanner without
// touching the validator's contract.

var (
	gradeLineRe = regexp.MustCompile(`(?m)^Grade Level:\s*(.+?)\s*$`)
	topicLineRe = regexp.MustCompile(`(?m)^Topic:\s*(.+?)\s*$`)

	// itemMarkerRe anchors each enumerated entry: a line starting with a
	// number followed by "." or ")". Entry text runs until the next marker
	// or end of input, so multi-sentence entries may span lines.
	itemMarkerRe = regexp.MustCompile(`(?m)^[ \t]*(\d+)[.)][ \t]+`)
)

// extractGrade pulls the value of the "Grade Level:" line.
func extractGrade(output string) string {
	if m := gradeLineRe.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}

// extractTopic pulls the value of the "Topic:" line.
func extractTopic(output string) string {
	if m := topicLineRe.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}

// extractItems locates the family lead-in sentence and consumes one entry per
// numbered marker until the next marker or end of text. Whitespace inside an
// entry is collapsed so later rules see one normalized line per item.
func extractItems(output string, fam *family.Family) []string {
	idx := strings.Index(output, fam.LeadIn)
	if idx < 0 {
		return nil
	}
	tail := output[idx+len(fam.LeadIn):]

	markers := itemMarkerRe.FindAllStringIndex(tail, -1)
	if len(markers) == 0 {
		return nil
	}

	items := make([]string, 0, len(markers))
	for i, marker := range markers {
		start := marker[1]
		end := len(tail)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		text := strings.Join(strings.Fields(tail[start:end]), " ")
		if text != "" {
			items = append(items, text)
		}
	}
	return items
}

// firstToken returns the leading word of an item, stripped of trailing
// punctuation. Hyphenated leads ("Role-play ...") keep the full compound.
func firstToken(item string) string {
	fields := strings.Fields(item)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[0], func(r rune) bool {
		return !isLetter(r) && r != '-'
	})
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

var sentenceEndRe = regexp.MustCompile(`[.!?]+`)

// countSentences counts terminal-punctuation groups, plus one trailing
// fragment if text continues past the last terminator.
func countSentences(text string) int {
	n := len(sentenceEndRe.FindAllString(text, -1))
	last := sentenceEndRe.FindAllStringIndex(text, -1)
	rest := text
	if len(last) > 0 {
		rest = text[last[len(last)-1][1]:]
	}
	if strings.IndexFunc(rest, isLetter) >= 0 {
		n++
	}
	return n
}
