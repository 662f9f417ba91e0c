// Package markdown renders the restricted Markdown dialect used by the
// preview pane and printing into an HTML fragment.
//
// The renderer is a fixed pipeline of whitelisting transforms rather than a
// general Markdown parser: anything it does not recognise stays escaped
// text, and links are only emitted for a short list of safe schemes. It is
// pure and cheap enough to run on every keystroke.
package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultLanguage labels code blocks without a usable info string.
const DefaultLanguage = "text"

// Render converts text to HTML.
func Render(text string) string {
	if text == "" {
		return ""
	}

	text = stripReasoning(text)
	text = normalizeSpaces(text)
	text = closeOpenFence(text)

	text, blocks := extractCodeBlocks(text)
	text = escapeHTML(text)
	text = renderBlocks(text)

	text, spans := extractCodeSpans(text)
	text = renderEmphasis(text)
	text = renderLinks(text)
	text = restoreCodeSpans(text, spans)

	text = renderLineBreaks(text)
	return restoreCodeBlocks(text, blocks)
}

var (
	reReasoningBlock = regexp.MustCompile(`(?is)<think>.*?</think>|<thinking>.*?</thinking>`)
	reReasoningOpen  = regexp.MustCompile(`(?is)<think(?:ing)?>.*\z`)
)

// stripReasoning removes reasoning blocks, including one left open at the
// end of a streamed input.
func stripReasoning(text string) string {
	text = reReasoningBlock.ReplaceAllString(text, "")
	return reReasoningOpen.ReplaceAllString(text, "")
}

func normalizeSpaces(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == 0:
			return -1
		case r == '\u00a0', r == '\u1680', r >= '\u2000' && r <= '\u200a',
			r == '\u202f', r == '\u205f', r == '\u3000':
			return ' '
		}
		return r
	}, text)
}

var (
	reFenceOpen  = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})[ \t]*([^`\n]*)$")
	reFenceClose = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})[ \t]*$")
)

type fence struct {
	char byte
	size int
}

func openFence(line string) (fence, string, bool) {
	m := reFenceOpen.FindStringSubmatch(line)
	if m == nil {
		return fence{}, "", false
	}
	return fence{char: m[1][0], size: len(m[1])}, strings.TrimSpace(m[2]), true
}

func (f fence) closedBy(line string) bool {
	m := reFenceClose.FindStringSubmatch(line)
	return m != nil && m[1][0] == f.char && len(m[1]) >= f.size
}

// closeOpenFence appends a closing fence when the input ends inside a fenced
// block.
func closeOpenFence(text string) string {
	var (
		open   fence
		inside bool
	)
	for _, line := range strings.Split(text, "\n") {
		if inside {
			if open.closedBy(line) {
				inside = false
			}
			continue
		}
		if f, _, ok := openFence(line); ok {
			open, inside = f, true
		}
	}
	if !inside {
		return text
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + strings.Repeat(string(open.char), open.size)
}

type codeBlock struct {
	lang string
	code string
}

var reLanguage = regexp.MustCompile(`^[a-z0-9_-]+$`)

func language(info string) string {
	fields := strings.Fields(strings.ToLower(info))
	if len(fields) == 0 || !reLanguage.MatchString(fields[0]) {
		return DefaultLanguage
	}
	return fields[0]
}

func blockPlaceholder(i int) string {
	return "\x00CB" + strconv.Itoa(i) + "\x00"
}

// extractCodeBlocks replaces every fenced block with a placeholder line.
func extractCodeBlocks(text string) (string, []codeBlock) {
	var (
		out    []string
		blocks []codeBlock
		body   []string
		open   fence
		lang   string
		inside bool
	)
	for _, line := range strings.Split(text, "\n") {
		if !inside {
			if f, info, ok := openFence(line); ok {
				open, lang, inside, body = f, language(info), true, nil
				continue
			}
			out = append(out, line)
			continue
		}
		if !open.closedBy(line) {
			body = append(body, line)
			continue
		}
		for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
			body = body[:len(body)-1]
		}
		out = append(out, blockPlaceholder(len(blocks)))
		blocks = append(blocks, codeBlock{lang: lang, code: strings.Join(body, "\n")})
		inside = false
	}
	return strings.Join(out, "\n"), blocks
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var (
	reHeading   = regexp.MustCompile(`(?m)^(#{1,4})[ \t]+(.+?)[ \t]*$`)
	reRule      = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	reOrdered   = regexp.MustCompile(`^[ \t]*\d+\.[ \t]+(.*)$`)
	reQuote     = regexp.MustCompile(`^&gt;(?:[ \t](.*))?$`)
	reUnordered = regexp.MustCompile(`^[ \t]*[-*][ \t]+(.*)$`)
	reTableSep  = regexp.MustCompile(`^[ \t|:-]+$`)
	reSepCell   = regexp.MustCompile(`^:?-+:?$`)
)

func renderBlocks(text string) string {
	text = reHeading.ReplaceAllStringFunc(text, func(m string) string {
		sub := reHeading.FindStringSubmatch(m)
		level := len(sub[1])
		return fmt.Sprintf("<h%d>%s</h%d>", level, sub[2], level)
	})
	text = reRule.ReplaceAllString(text, "<hr>")

	lines := strings.Split(text, "\n")
	lines = groupRuns(lines, reOrdered, func(items []string) string {
		return "<ol>" + listItems(items) + "</ol>"
	})
	lines = groupRuns(lines, reQuote, func(items []string) string {
		return "<blockquote>" + strings.Join(items, "\n") + "</blockquote>"
	})
	lines = groupRuns(lines, reUnordered, func(items []string) string {
		return "<ul>" + listItems(items) + "</ul>"
	})
	lines = renderTables(lines)
	return strings.Join(lines, "\n")
}

// groupRuns replaces each run of consecutive lines matching re with a single
// line built by wrap from the first submatch of every line.
func groupRuns(lines []string, re *regexp.Regexp, wrap func(items []string) string) []string {
	out := make([]string, 0, len(lines))
	var run []string
	flush := func() {
		if len(run) > 0 {
			out = append(out, wrap(run))
			run = nil
		}
	}
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			run = append(run, m[1])
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return out
}

func listItems(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("<li>")
		b.WriteString(strings.TrimSpace(it))
		b.WriteString("</li>")
	}
	return b.String()
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// tableAlignments parses a separator row. It reports false when the row is
// not a valid separator for a table of at least two columns.
func tableAlignments(line string) ([]string, bool) {
	if !strings.Contains(line, "|") || !strings.Contains(line, "-") || !reTableSep.MatchString(line) {
		return nil, false
	}
	cells := splitRow(line)
	if len(cells) < 2 {
		return nil, false
	}
	aligns := make([]string, len(cells))
	for i, c := range cells {
		if !reSepCell.MatchString(c) {
			return nil, false
		}
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[i] = "center"
		case right:
			aligns[i] = "right"
		default:
			aligns[i] = "left"
		}
	}
	return aligns, true
}

func renderTables(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.Contains(line, "|") || i+1 >= len(lines) {
			out = append(out, line)
			continue
		}
		aligns, ok := tableAlignments(lines[i+1])
		header := splitRow(line)
		if !ok || len(header) != len(aligns) {
			out = append(out, line)
			continue
		}

		end := i + 2
		for end < len(lines) && strings.Contains(lines[end], "|") {
			end++
		}
		out = append(out, buildTable(header, aligns, lines[i+2:end]))
		i = end - 1
	}
	return out
}

func buildTable(header, aligns []string, rows []string) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for i, h := range header {
		fmt.Fprintf(&b, `<th style="text-align:%s">%s</th>`, aligns[i], h)
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		cells := splitRow(row)
		b.WriteString("<tr>")
		for i, align := range aligns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, `<td style="text-align:%s">%s</td>`, align, cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

var (
	reCodeSpan     = regexp.MustCompile("`([^`\n]+)`")
	reSpan         = regexp.MustCompile(`\x00IC(\d+)\x00`)
	reBold         = regexp.MustCompile(`(?s)\*\*(.+?)\*\*`)
	reLink         = regexp.MustCompile(`\[([^\]]+)\]\(((?:[^()\s]|\([^()\s]*\))+)\)`)
	reSafeURL      = regexp.MustCompile(`(?i)^(?:https?://|mailto:|tel:|/|#)`)
	reBlock        = regexp.MustCompile(`\x00CB(\d+)\x00`)
	reBreakBefore  = regexp.MustCompile(`<br>(<(?:h[1-4]|hr|ol|ul|blockquote|table)>|\x00CB\d+\x00)`)
	reBreakAfter   = regexp.MustCompile(`(</(?:h[1-4]|ol|ul|blockquote|table)>|<hr>|\x00CB\d+\x00)<br>`)
	attributeQuote = strings.NewReplacer(`"`, "&quot;")
)

func extractCodeSpans(text string) (string, []string) {
	var spans []string
	text = reCodeSpan.ReplaceAllStringFunc(text, func(m string) string {
		spans = append(spans, m[1:len(m)-1])
		return "\x00IC" + strconv.Itoa(len(spans)-1) + "\x00"
	})
	return text, spans
}

func restoreCodeSpans(text string, spans []string) string {
	return reSpan.ReplaceAllStringFunc(text, func(m string) string {
		i, _ := strconv.Atoi(m[3 : len(m)-1])
		return "<code>" + spans[i] + "</code>"
	})
}

func renderEmphasis(text string) string {
	text = reBold.ReplaceAllString(text, "<b>$1</b>")
	return renderItalic(text)
}

// renderItalic pairs up single asterisks that do not touch another asterisk,
// left to right.
func renderItalic(text string) string {
	var marks []int
	for i := 0; i < len(text); i++ {
		if text[i] != '*' {
			continue
		}
		if (i > 0 && text[i-1] == '*') || (i+1 < len(text) && text[i+1] == '*') {
			continue
		}
		marks = append(marks, i)
	}
	if len(marks) < 2 {
		return text
	}

	var b strings.Builder
	last := 0
	for k := 0; k+1 < len(marks); k += 2 {
		open, closing := marks[k], marks[k+1]
		b.WriteString(text[last:open])
		b.WriteString("<i>")
		b.WriteString(text[open+1 : closing])
		b.WriteString("</i>")
		last = closing + 1
	}
	b.WriteString(text[last:])
	return b.String()
}

func renderLinks(text string) string {
	return reLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := reLink.FindStringSubmatch(m)
		label, target := sub[1], sub[2]
		if !reSafeURL.MatchString(target) {
			return label
		}
		href := attributeQuote.Replace(target)
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer" title="%s">%s</a>`, href, href, label)
	})
}

func renderLineBreaks(text string) string {
	text = strings.ReplaceAll(text, "\n", "<br>")
	text = reBreakBefore.ReplaceAllString(text, "$1")
	return reBreakAfter.ReplaceAllString(text, "$1")
}

func restoreCodeBlocks(text string, blocks []codeBlock) string {
	return reBlock.ReplaceAllStringFunc(text, func(m string) string {
		i, _ := strconv.Atoi(m[3 : len(m)-1])
		return renderCodeBlock(blocks[i])
	})
}

func renderCodeBlock(cb codeBlock) string {
	payload := strings.ReplaceAll(url.QueryEscape(cb.code), "+", "%20")
	return `<div class="code-block"><div class="code-block-header">` +
		`<span class="code-lang">` + cb.lang + `</span>` +
		`<button type="button" class="code-copy" data-code="` + payload + `">Copy</button>` +
		`</div><pre><code class="language-` + cb.lang + `">` + escapeHTML(cb.code) + `</code></pre></div>`
}
