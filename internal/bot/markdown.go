package bot

import "strings"

// markdownV2Escaper escapes every character MarkdownV2 treats as
// markup, so arbitrary message lines survive re-rendering.
var markdownV2Escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

// escapeMarkdownV2 escapes text for safe use inside a MarkdownV2 message.
func escapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}

// strikethrough wraps every non-blank line of text in MarkdownV2
// strikethrough markup, escaping the line content.
func strikethrough(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines[i] = "~" + escapeMarkdownV2(trimmed) + "~"
	}
	return strings.Join(lines, "\n")
}
