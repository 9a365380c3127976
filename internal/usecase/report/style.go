package report

import (
	"regexp"
	"strings"
)

// wrapWidth is the hard column limit for emitted commentary. Quoted diff
// lines are exempt: they are never re-flowed, whatever their length.
const wrapWidth = 78

// maxParagraphSentences bounds how many consecutive declarative sentences
// stay in one paragraph before a topic break is forced.
const maxParagraphSentences = 4

var (
	uppercaseRunRe = regexp.MustCompile(`[A-Z]{4,}`)
	lineNumberRe   = regexp.MustCompile(`(?i)\blines?\s+\d+(?:\s*(?:-|to|through)\s*\d+)?\b`)
	boldRe         = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	fenceRe        = regexp.MustCompile("(?m)^```[a-zA-Z]*$\n?")
	headingRe      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletRe       = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	inlineCodeRe   = regexp.MustCompile("`([^`\n]+)`")
	sentenceEndRe  = regexp.MustCompile(`([.!?])(\s+|$)`)
)

// styleCommentary rewrites a commentary string to the plain-text rules:
// markdown punctuation goes away, shouting uppercase runs are lowercased
// unless quoted verbatim from a snippet, and numeric line references are
// replaced with the finding's function or call-chain reference, since the
// reply format forbids line numbers.
func styleCommentary(text, codeRef string, allowTokens []string) string {
	text = stripMarkdown(text)
	text = replaceLineNumbers(text, codeRef)
	text = lowercaseShouting(text, allowTokens)
	return strings.TrimSpace(text)
}

func stripMarkdown(text string) string {
	text = fenceRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	return text
}

func replaceLineNumbers(text, codeRef string) string {
	if codeRef == "" {
		codeRef = "the changed code"
	}
	return lineNumberRe.ReplaceAllString(text, codeRef)
}

// lowercaseShouting lowercases any run of four or more capitals that is not
// a verbatim token from the finding's quoted snippets. Source identifiers
// and constants the reviewer actually quoted stay exactly as written.
func lowercaseShouting(text string, allowTokens []string) string {
	return uppercaseRunRe.ReplaceAllStringFunc(text, func(run string) string {
		for _, allow := range allowTokens {
			if strings.Contains(allow, run) {
				return run
			}
		}
		return strings.ToLower(run)
	})
}

// splitSentences cuts prose at sentence boundaries, keeping terminal
// punctuation with each sentence.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	rest := text
	for {
		loc := sentenceEndRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			sentences = append(sentences, strings.TrimSpace(rest))
			break
		}
		end := loc[3] // end of the punctuation group
		sentence := strings.TrimSpace(rest[:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		rest = strings.TrimSpace(rest[end:])
		if rest == "" {
			break
		}
	}
	return sentences
}

// shapeParagraphs groups sentences into paragraphs: short declarative runs
// stay together, a question following declaratives is pushed into its own
// paragraph after a blank line (statement block, blank line, question), and
// overlong runs break at the sentence-count threshold.
func shapeParagraphs(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, s := range sentences {
		if strings.HasSuffix(s, "?") && len(current) > 0 {
			flush()
			paragraphs = append(paragraphs, s)
			continue
		}
		current = append(current, s)
		if len(current) >= maxParagraphSentences {
			flush()
		}
	}
	flush()
	return paragraphs
}

// wrapText greedily wraps prose at the column limit. Words longer than the
// limit (long identifiers, URLs) land on their own line rather than being
// split mid-token.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	lines = append(lines, line)
	return lines
}

// renderCommentary runs the full commentary pipeline: style filters, then
// paragraph shaping, then wrapping. The result is a flat line list with
// blank lines separating paragraphs.
func renderCommentary(text, codeRef string, allowTokens []string) []string {
	styled := styleCommentary(text, codeRef, allowTokens)
	if styled == "" {
		return nil
	}

	var out []string
	for i, para := range shapeParagraphs(styled) {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, wrapText(para, wrapWidth)...)
	}
	return out
}

// limitSentences returns at most n sentences of text and whether anything
// was cut.
func limitSentences(text string, n int) (string, bool) {
	sentences := splitSentences(text)
	if len(sentences) <= n {
		return strings.Join(sentences, " "), false
	}
	return strings.Join(sentences[:n], " "), true
}
