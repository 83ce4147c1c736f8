// Package ingest prepares reference documents for the vector store: clause
// splitting for sample leases, article splitting for law texts, heading
// splitting for common-mistake write-ups, and HTML fetching for law pages.
package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Chunk size floors/caps, in runes. Shorter fragments are heading debris;
// longer ones embed poorly and get safety-split.
const (
	minClauseLen  = 40
	minArticleLen = 80
	maxArticleLen = 3500
	minMistakeLen = 80
	maxMistakeLen = 2500
)

// clauseStartPattern matches the opening of a lease clause: المادة/البند
// with a number, ordinal words, or letter/number list markers.
var clauseStartPattern = regexp.MustCompile(`^(?:` +
	`المادة\s+\d+|` +
	`البند\s+\d+|` +
	`المادة\s+(?:الأولى|الثانية|الثالثة|الرابعة|الخامسة|السادسة|السابعة|الثامنة|التاسعة|العاشرة)|` +
	`(?:أولاً|ثانياً|ثالثاً|رابعاً|خامساً|سادساً|سابعاً|ثامناً|تاسعاً|عاشراً)|` +
	`[أبجدهوزحطي]\s*[-–:]|` +
	`\d+\s*[-–:.]` +
	`)`)

// lawArticlePattern matches a line holding only "المادة <n>" or "مادة <n>",
// with Arabic or Western digits.
var lawArticlePattern = regexp.MustCompile(`(?m)^\s*(?:المادة|مادة)\s*[0-9٠-٩]+\s*$`)

// mistakeHeadingPattern matches numbered headings like "1- ", "2. ", "١- ".
var mistakeHeadingPattern = regexp.MustCompile(`(?m)^\s*[0-9٠-٩]+\s*[-.]\s*`)

var blankLines = regexp.MustCompile(`\n{2,}`)

// normalize fixes Arabic presentation forms (NFKC) and newline variants.
func normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// SplitClauses breaks a sample lease into individual clauses. Lines that
// open a new clause start a new chunk; everything else is appended to the
// current one. Fragments of 40 runes or fewer are dropped as junk.
func SplitClauses(text string) []string {
	text = blankLines.ReplaceAllString(normalize(text), "\n")

	var chunks []string
	var buffer string
	flush := func() {
		if trimmed := strings.TrimSpace(buffer); len([]rune(trimmed)) > minClauseLen {
			chunks = append(chunks, trimmed)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if clauseStartPattern.MatchString(line) && buffer != "" {
			flush()
			buffer = line
		} else if buffer == "" {
			buffer = line
		} else {
			buffer += " " + line
		}
	}
	flush()

	return chunks
}

// splitAt cuts text at the start offset of each match location.
func splitAt(text string, locs [][]int) []string {
	if len(locs) == 0 {
		return []string{text}
	}

	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, text[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, text[prev:])
	return parts
}

// hardSplit slices a long part into maxChars-rune windows.
func hardSplit(part string, minLen, maxChars int) []string {
	runes := []rune(part)
	var out []string
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		sub := strings.TrimSpace(string(runes[i:end]))
		if len([]rune(sub)) >= minLen {
			out = append(out, sub)
		}
	}
	return out
}

// SplitLawArticles breaks a law text into per-article chunks at "المادة <n>"
// heading lines. Fragments shorter than 80 runes are dropped; chunks over
// 3500 runes are safety-split.
func SplitLawArticles(text string) []string {
	text = strings.TrimSpace(blankLines.ReplaceAllString(normalize(text), "\n"))

	var chunks []string
	for _, part := range splitAt(text, lawArticlePattern.FindAllStringIndex(text, -1)) {
		part = strings.TrimSpace(part)
		n := len([]rune(part))
		if n < minArticleLen {
			continue
		}
		if n <= maxArticleLen {
			chunks = append(chunks, part)
		} else {
			chunks = append(chunks, hardSplit(part, minArticleLen, maxArticleLen)...)
		}
	}
	return chunks
}

// sentenceSplit slices a long part into windows of at most maxChars runes,
// cutting after sentence punctuation.
func sentenceSplit(part string, minLen, maxChars int) []string {
	var sentences []string
	var cur []rune
	for _, r := range part {
		cur = append(cur, r)
		switch r {
		case '.', '،', '؛', ':', '\n':
			sentences = append(sentences, string(cur))
			cur = nil
		}
	}
	if len(cur) > 0 {
		sentences = append(sentences, string(cur))
	}

	var out []string
	var buf string
	flush := func() {
		if trimmed := strings.TrimSpace(buf); len([]rune(trimmed)) >= minLen {
			out = append(out, trimmed)
		}
	}
	for _, s := range sentences {
		if len([]rune(buf))+len([]rune(s)) <= maxChars {
			buf += s
		} else {
			flush()
			buf = s
		}
	}
	flush()
	return out
}

// SplitMistakes breaks a common-mistakes write-up at numbered headings, with
// a blank-line fallback when the text is not numbered, and a sentence-level
// safety split for overlong chunks.
func SplitMistakes(text string) []string {
	text = strings.TrimSpace(normalize(text))

	var parts []string
	for _, part := range splitAt(text, mistakeHeadingPattern.FindAllStringIndex(text, -1)) {
		if part = strings.TrimSpace(part); len([]rune(part)) >= minMistakeLen {
			parts = append(parts, part)
		}
	}

	if len(parts) < 2 {
		parts = parts[:0]
		for _, part := range blankLines.Split(text, -1) {
			if part = strings.TrimSpace(part); len([]rune(part)) >= minMistakeLen {
				parts = append(parts, part)
			}
		}
	}

	var chunks []string
	for _, part := range parts {
		if len([]rune(part)) <= maxMistakeLen {
			chunks = append(chunks, part)
		} else {
			chunks = append(chunks, sentenceSplit(part, minMistakeLen, maxMistakeLen)...)
		}
	}
	return chunks
}
