// Package descramble implements the n-parameter and signature-cipher
// descrambling step of the resolver's normalization pass. It locates the
// obfuscated function bodies inside a player script and hands them to a
// sandboxed JavaScript evaluator, rather than hand-decompiling the
// swap/splice/reverse opcodes a static fast path would need — running the
// extracted source verbatim is far less likely to drift out of sync with
// upstream's ever-changing obfuscation.
package descramble

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/dlclark/regexp2"
)

const jsIdent = `[a-zA-Z_\$][a-zA-Z_0-9]*`

var (
	nFunctionNameRegexps = []*regexp.Regexp{
		regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$]{0,3})\[(\d+)\](.+)\|\|([a-zA-Z0-9]{0,3})`),
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\[(\d+)\]\([a-zA-Z0-9$]{1,}\).+\|\|([a-zA-Z0-9$]{1,})`),
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)`),
	}

	// nFunctionNameLookaheadRegexp covers the loosely-spaced variant the
	// fixed patterns above miss. It needs a negative lookahead to reject
	// matches inside the `nsig` debug-logging call some player builds
	// carry right next to the real assignment, which stdlib regexp
	// cannot express.
	nFunctionNameLookaheadRegexp = regexp2.MustCompile(
		`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)(?!\s*,\s*console)`, regexp2.None)

	actionsObjRegexp = regexp.MustCompile(fmt.Sprintf(
		`(?:var|let|const)\s+(%s)=\{((?:%s:function\(a(?:,b)?\)\{[^{}]*\},?\n?)+)\}\s*;?`,
		jsIdent, jsIdent))

	signatureFuncRegexps = []*regexp.Regexp{
		regexp.MustCompile(fmt.Sprintf(
			`function(?:\s+%s)?\(a\)\{a=a\.split\([^\)]*\);[^}]*return a\.join\([^\)]*\)\}`, jsIdent)),
		regexp.MustCompile(fmt.Sprintf(
			`%s\s*=\s*function\(a\)\{a=a\.split\([^\)]*\);[^}]*return a\.join\([^\)]*\)\}`, jsIdent)),
	}
)

// LocateNFunction finds the n-parameter transform function inside a player
// script and returns it as standalone, directly evaluable JS source.
func LocateNFunction(playerJS string) (string, error) {
	body := []byte(playerJS)
	name := ""

	for _, re := range nFunctionNameRegexps {
		if m := re.FindSubmatch(body); len(m) > 1 {
			name = string(m[1])
			break
		}
	}
	if name == "" {
		if m, _ := nFunctionNameLookaheadRegexp.FindStringMatch(playerJS); m != nil {
			groups := m.Groups()
			if len(groups) > 1 && len(groups[1].Captures) > 0 {
				name = groups[1].Captures[0].String()
			}
		}
	}
	if name == "" {
		return "", fmt.Errorf("descramble: n-function name not found")
	}

	return extractFunctionBody(body, name)
}

// LocateSignatureFunction finds the signature-cipher descramble function
// and the helper-object it closes over, and returns a single self-contained
// expression that evaluates to a callable.
func LocateSignatureFunction(playerJS string) (string, error) {
	body := []byte(playerJS)

	var funcBody []byte
	for _, re := range signatureFuncRegexps {
		if m := re.Find(body); m != nil {
			funcBody = m
			break
		}
	}
	if funcBody == nil {
		return "", fmt.Errorf("descramble: signature function not found")
	}

	obj := actionsObjRegexp.Find(body)
	if obj == nil {
		return "", fmt.Errorf("descramble: signature helper object not found")
	}

	return fmt.Sprintf("(function(){%s;return %s;})()", obj, funcBody), nil
}

// extractFunctionBody returns the full "name=function(...){...}" (or
// "function name(...){...}") text starting at name's definition, using
// brace counting so nested blocks and string literals containing braces
// don't truncate the match early.
func extractFunctionBody(body []byte, name string) (string, error) {
	defPatterns := [][]byte{
		[]byte(name + "=function("),
		[]byte(name + " = function("),
		[]byte("function " + name + "("),
	}
	start := -1
	for _, def := range defPatterns {
		if idx := bytes.Index(body, def); idx >= 0 {
			start = idx
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("descramble: definition of %q not found", name)
	}

	bracePos := bytes.IndexByte(body[start:], '{')
	if bracePos < 0 {
		return "", fmt.Errorf("descramble: %q has no function body", name)
	}
	pos := start + bracePos + 1

	var strCh byte
	for depth := 1; depth > 0; pos++ {
		if pos >= len(body) {
			return "", fmt.Errorf("descramble: unterminated body for %q", name)
		}
		c := body[pos]
		switch c {
		case '{':
			if strCh == 0 {
				depth++
			}
		case '}':
			if strCh == 0 {
				depth--
			}
		case '`', '"', '\'':
			if pos > 0 && body[pos-1] == '\\' {
				continue
			}
			if strCh == 0 {
				strCh = c
			} else if strCh == c {
				strCh = 0
			}
		}
	}
	return string(body[start:pos]), nil
}
