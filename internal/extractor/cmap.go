package extractor

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	bfcharRe  = regexp.MustCompile(`(?s)beginbfchar(.*?)endbfchar`)
	bfrangeRe = regexp.MustCompile(`(?s)beginbfrange(.*?)endbfrange`)
	hexTokRe  = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

// glyphMap is the union of a document's ToUnicode CMaps: glyph code, as
// uppercase hex, to the text it renders.
type glyphMap struct {
	codes map[string]string
	// width is the code length in bytes, taken from the first mapping.
	width int
}

func newGlyphMap() *glyphMap {
	return &glyphMap{codes: make(map[string]string)}
}

func isCMap(content string) bool {
	return strings.Contains(content, "beginbfchar") || strings.Contains(content, "beginbfrange")
}

func (g *glyphMap) set(code, text string) {
	if text == "" {
		return
	}
	code = strings.ToUpper(code)
	if g.width == 0 {
		g.width = max(len(code)/2, 1)
	}
	g.codes[code] = text
}

// addCMap reads the bfchar and bfrange sections of one ToUnicode stream.
func (g *glyphMap) addCMap(content string) {
	for _, block := range bfcharRe.FindAllStringSubmatch(content, -1) {
		toks := hexTokRe.FindAllStringSubmatch(block[1], -1)
		for i := 0; i+1 < len(toks); i += 2 {
			g.set(toks[i][1], utf16Hex(toks[i+1][1]))
		}
	}
	for _, block := range bfrangeRe.FindAllStringSubmatch(content, -1) {
		for _, line := range strings.Split(block[1], "\n") {
			g.addRange(line)
		}
	}
}

// addRange handles both "<lo> <hi> <dst>" and "<lo> <hi> [<d1> <d2> ...]".
func (g *glyphMap) addRange(line string) {
	head, list, isList := strings.Cut(line, "[")
	toks := hexTokRe.FindAllStringSubmatch(head, -1)
	if len(toks) < 2 {
		return
	}
	lo, err := strconv.ParseUint(toks[0][1], 16, 32)
	if err != nil {
		return
	}
	hi, err := strconv.ParseUint(toks[1][1], 16, 32)
	if err != nil || hi < lo || hi-lo > 0xFFFF {
		return
	}
	width := len(toks[0][1])

	if isList {
		for i, t := range hexTokRe.FindAllStringSubmatch(list, -1) {
			g.set(padHex(lo+uint64(i), width), utf16Hex(t[1]))
		}
		return
	}
	if len(toks) < 3 {
		return
	}
	dst, err := strconv.ParseUint(toks[2][1], 16, 32)
	if err != nil {
		return
	}
	for code := lo; code <= hi; code++ {
		g.set(padHex(code, width), utf16Hex(padHex(dst+code-lo, len(toks[2][1]))))
	}
}

// decode maps raw string bytes through the table. Codes with no mapping
// are dropped, except printable ASCII in single-byte tables.
func (g *glyphMap) decode(raw []byte) string {
	if len(g.codes) == 0 {
		return ""
	}
	w := max(g.width, 1)

	var sb strings.Builder
	for i := 0; i+w <= len(raw); {
		if s, ok := g.codes[hexKey(raw[i:i+w])]; ok {
			sb.WriteString(s)
			i += w
			continue
		}
		if w > 1 {
			if s, ok := g.codes[hexKey(raw[i:i+1])]; ok {
				sb.WriteString(s)
				i++
				continue
			}
		} else if raw[i] >= 0x20 && raw[i] < 0x7f {
			sb.WriteByte(raw[i])
		}
		i += w
	}
	return sb.String()
}

func hexKey(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

func padHex(v uint64, width int) string {
	s := fmt.Sprintf("%0*X", width, v)
	return s[len(s)-width:]
}

// utf16Hex decodes a UTF-16BE hex string, surrogate pairs included.
func utf16Hex(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil || len(b) < 2 {
		return ""
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}
