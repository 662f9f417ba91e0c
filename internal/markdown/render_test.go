package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codeBlockHTML(lang, payload, body string) string {
	return `<div class="code-block"><div class="code-block-header"><span class="code-lang">` + lang +
		`</span><button type="button" class="code-copy" data-code="` + payload + `">Copy</button></div>` +
		`<pre><code class="language-` + lang + `">` + body + `</code></pre></div>`
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "plain text", "plain text"},
		{"whitespace only", "  \n ", "  <br> "},
		{"bold and italic", "**bold** and *italic*", "<b>bold</b> and <i>italic</i>"},
		{"bold spans lines", "**a\nb**", "<b>a<br>b</b>"},
		{"unpaired double asterisk", "a**b", "a**b"},
		{"escapes html", "<script>alert(1)</script> & co", "&lt;script&gt;alert(1)&lt;/script&gt; &amp; co"},

		{"unsafe link degrades to label", "[x](javascript:alert(1))", "x"},
		{"ftp link degrades", "[files](ftp://host/x)", "files"},
		{
			"https link",
			"[site](https://example.com/a?b=1&c=2)",
			`<a href="https://example.com/a?b=1&amp;c=2" target="_blank" rel="noopener noreferrer" title="https://example.com/a?b=1&amp;c=2">site</a>`,
		},
		{
			"relative and anchor links",
			"[docs](/docs) [top](#top)",
			`<a href="/docs" target="_blank" rel="noopener noreferrer" title="/docs">docs</a> ` +
				`<a href="#top" target="_blank" rel="noopener noreferrer" title="#top">top</a>`,
		},
		{
			"mailto link",
			"[mail](mailto:a@b.c)",
			`<a href="mailto:a@b.c" target="_blank" rel="noopener noreferrer" title="mailto:a@b.c">mail</a>`,
		},
		{
			"quote in url is escaped",
			`[q](/a"b)`,
			`<a href="/a&quot;b" target="_blank" rel="noopener noreferrer" title="/a&quot;b">q</a>`,
		},

		{"heading trims following break", "# Title\ntext", "<h1>Title</h1>text"},
		{"heading levels", "## Two\n#### Four", "<h2>Two</h2><h4>Four</h4>"},
		{"five hashes is not a heading", "##### no", "##### no"},
		{"rule", "a\n---\nb", "a<hr>b"},
		{"star rule", "***", "<hr>"},
		{"unordered list", "- one\n* two", "<ul><li>one</li><li>two</li></ul>"},
		{"ordered list", "1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"list after paragraph", "intro\n- a\n- b\nouttro", "intro<ul><li>a</li><li>b</li></ul>outtro"},
		{"blockquote", "> quoted\n> more", "<blockquote>quoted<br>more</blockquote>"},

		{
			"table with alignment",
			"| a | b | c |\n|:--|--:|:-:|\n| 1 | 2 | 3 |",
			`<table><thead><tr><th style="text-align:left">a</th><th style="text-align:right">b</th><th style="text-align:center">c</th></tr></thead>` +
				`<tbody><tr><td style="text-align:left">1</td><td style="text-align:right">2</td><td style="text-align:center">3</td></tr></tbody></table>`,
		},
		{
			"table pads short rows",
			"a | b\n--- | ---\nonly |\nafter",
			`<table><thead><tr><th style="text-align:left">a</th><th style="text-align:left">b</th></tr></thead>` +
				`<tbody><tr><td style="text-align:left">only</td><td style="text-align:left"></td></tr></tbody></table>after`,
		},
		{"single column table stays literal", "| a |\n| --- |", "| a |<br>| --- |"},
		{"bad separator stays literal", "| a | b |\n| x | y |", "| a | b |<br>| x | y |"},
		{"separator with stray colon stays literal", "| a | b |\n| -:- | --- |", "| a | b |<br>| -:- | --- |"},

		{"code span protects markers", "use `**x**` here", "use <code>**x**</code> here"},
		{"code span content is escaped", "`<b>`", "<code>&lt;b&gt;</code>"},

		{"reasoning block removed", "<think>hidden</think>shown", "shown"},
		{"long reasoning tag removed", "a<thinking>\nsecret\n</thinking>b", "ab"},
		{"unterminated reasoning removed", "answer<thinking>partial", "answer"},
		{"exotic spaces", "a\u00a0b\u2003c\u3000d\u202fe", "a b c d e"},
		{"nul dropped", "a\x00b", "ab"},
		{"crlf", "a\r\nb", "a<br>b"},

		{"unterminated fence", "```js\ncode", codeBlockHTML("js", "code", "code")},
		{
			"code block escapes and trims trailing blanks",
			"```\n<b>&</b>\n\n\n```\nafter",
			codeBlockHTML("text", "%3Cb%3E%26%3C%2Fb%3E", "&lt;b&gt;&amp;&lt;/b&gt;") + "after",
		},
		{
			"code block after paragraph",
			"intro\n```go\nx := 1\n```",
			"intro" + codeBlockHTML("go", "x%20%3A%3D%201", "x := 1"),
		},
		{"invalid language falls back", "```C++\nx\n```", codeBlockHTML("text", "x", "x")},
		{"uppercase language lowercased", "~~~Python extra\nprint\n~~~", codeBlockHTML("python", "print", "print")},
		{
			"longer fence contains shorter one",
			"````\n```\ninner\n````",
			codeBlockHTML("text", "%60%60%60%0Ainner", "```\ninner"),
		},
		{"markers inside code block untouched", "```\n**x** [a](javascript:y)\n```", codeBlockHTML("text", "%2A%2Ax%2A%2A%20%5Ba%5D%28javascript%3Ay%29", "**x** [a](javascript:y)")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	in := "# T\n\n- a\n- b\n\n```sh\necho hi\n```\n| x | y |\n|---|---|\n| 1 | 2 |"
	assert.Equal(t, Render(in), Render(in))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "go", language("go"))
	assert.Equal(t, "objective-c", language("Objective-C"))
	assert.Equal(t, "text", language(""))
	assert.Equal(t, "text", language("c#"))
	assert.Equal(t, "js", language("js title=\"x\""))
}

func TestCloseOpenFence(t *testing.T) {
	assert.Equal(t, "```\nx\n```", closeOpenFence("```\nx\n```"))
	assert.Equal(t, "~~~~\nx\n~~~~", closeOpenFence("~~~~\nx"))
	assert.Equal(t, "```\nx\n```", closeOpenFence("```\nx\n"))
	assert.Equal(t, "```\n~~~\n```", closeOpenFence("```\n~~~"), "a different fence char does not close")
}
