package stream

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InlineScripts returns the text of every inline script element in page,
// in document order. Scripts with a src attribute are skipped.
func InlineScripts(page string) []string {
	z := html.NewTokenizer(strings.NewReader(page))
	var out []string
	inScript := false
	var buf strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Script {
				continue
			}
			inScript = true
			for _, a := range tok.Attr {
				if a.Key == "src" {
					inScript = false
				}
			}
			buf.Reset()
		case html.TextToken:
			if inScript {
				buf.Write(z.Text())
			}
		case html.EndTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script && inScript {
				out = append(out, buf.String())
				inScript = false
			}
		}
	}
}
