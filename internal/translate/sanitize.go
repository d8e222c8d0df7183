package translate

import (
	"regexp"
	"strings"
)

var (
	inlineDisclaimer = regexp.MustCompile(`(?i)\s*[\(\[]\s*(note|nota|disclaimer)\b[^\)\]]*[\)\]]\s*`)
	noteLine         = regexp.MustCompile(`(?i)^\s*(note|nota|disclaimer)\s*:`)
	answerLabel      = regexp.MustCompile(`(?i)^\s*(translation|translated text|traducción|english|inglés)\s*:\s*`)
)

// SanitizeAIText strips the disclaimers, labels and wrapping quotes that
// language models like to add around a translation.
func SanitizeAIText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = inlineDisclaimer.ReplaceAllString(s, " ")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || noteLine.MatchString(line) {
			continue
		}
		kept = append(kept, answerLabel.ReplaceAllString(line, ""))
	}

	out := strings.TrimSpace(strings.Join(kept, " "))
	out = strings.Join(strings.Fields(out), " ")
	return trimQuotes(out)
}

func trimQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"“", "”"}, {"«", "»"}, {"'", "'"}}
	for _, p := range pairs {
		if len(s) >= len(p[0])+len(p[1]) && strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) {
			inner := s[len(p[0]) : len(s)-len(p[1])]
			if !strings.ContainsAny(inner, p[0]+p[1]) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return s
}
