package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	blockRe = regexp.MustCompile(`(?s)\bBT\b(.*?)\bET\b`)
	// text-showing operators (Tj, ', TJ) and the line-moving ones (Td, TD, T*)
	opRe = regexp.MustCompile(`(<[0-9A-Fa-f]*>|\((?:\\.|[^\\)])*\))\s*(Tj|')|\[((?:\((?:\\.|[^\\)])*\)|[^\]])*)\]\s*TJ|[-\d.]+\s+[-\d.]+\s+T[dD]|T\*`)
	// array items: hex string, literal string or kerning number
	itemRe = regexp.MustCompile(`<([0-9A-Fa-f]*)>|\(((?:\\.|[^\\)])*)\)|(-?\d+(?:\.\d+)?)`)
)

// kernSpace is the TJ adjustment, in thousandths of an em, beyond which a
// gap renders as a word break.
const kernSpace = -200

// readRawText decodes text operators straight from the PDF's content
// streams. It covers Type0 fonts whose glyph codes only decode through a
// ToUnicode CMap, which the pdf library returns as garbage.
func readRawText(data []byte) string {
	streams := pdfStreams(data)
	glyphs := newGlyphMap()
	var content []string
	for _, s := range streams {
		c := string(inflate(s))
		if isCMap(c) {
			glyphs.addCMap(c)
			continue
		}
		content = append(content, c)
	}

	var parts []string
	for _, c := range content {
		if text := streamText(c, glyphs); len(text) > 10 {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// pdfStreams returns the bodies of every stream ... endstream block.
func pdfStreams(data []byte) [][]byte {
	var out [][]byte
	rest := data
	for {
		_, after, ok := bytes.Cut(rest, []byte("stream"))
		if !ok {
			return out
		}
		after = bytes.TrimPrefix(after, []byte("\r"))
		after = bytes.TrimPrefix(after, []byte("\n"))
		body, next, ok := bytes.Cut(after, []byte("endstream"))
		if !ok {
			return out
		}
		if len(body) > 0 {
			out = append(out, body)
		}
		rest = next
	}
}

// inflate undoes FlateDecode, returning b unchanged when it is not zlib.
func inflate(b []byte) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return b
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) == 0 {
		return b
	}
	return out
}

// streamText walks the BT/ET blocks of a content stream, starting a new
// line on every text move.
func streamText(content string, glyphs *glyphMap) string {
	var (
		lines []string
		line  strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for _, block := range blockRe.FindAllStringSubmatch(content, -1) {
		for _, op := range opRe.FindAllStringSubmatch(block[1], -1) {
			switch {
			case op[1] != "":
				if op[2] == "'" {
					flush()
				}
				line.WriteString(decodeItems(op[1], glyphs))
			case strings.HasSuffix(op[0], "TJ"):
				line.WriteString(decodeItems(op[3], glyphs))
			default:
				flush()
			}
		}
		flush()
	}
	return strings.Join(lines, "\n")
}

func decodeItems(s string, glyphs *glyphMap) string {
	var sb strings.Builder
	for _, m := range itemRe.FindAllStringSubmatch(s, -1) {
		switch {
		case strings.HasPrefix(m[0], "<"):
			sb.WriteString(decodeHexString(m[1], glyphs))
		case strings.HasPrefix(m[0], "("):
			sb.WriteString(decodeLiteral(m[2], glyphs))
		default:
			if n, err := strconv.ParseFloat(m[3], 64); err == nil && n <= kernSpace {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

func decodeHexString(h string, glyphs *glyphMap) string {
	if len(h)%2 != 0 {
		h += "0"
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}
	if s := glyphs.decode(raw); s != "" {
		return s
	}
	if len(raw) >= 2 && len(raw)%2 == 0 {
		if s := printableOnly(utf16Hex(h)); s != "" {
			return s
		}
	}
	return printableOnly(string(raw))
}

func decodeLiteral(s string, glyphs *glyphMap) string {
	raw := unescapeLiteral(s)
	if t := glyphs.decode(raw); t != "" && mostlyPrintable(t) {
		return t
	}
	return printableOnly(string(raw))
}

// unescapeLiteral resolves backslash escapes in a literal string,
// including up to three octal digits.
func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		default:
			if c < '0' || c > '7' {
				out = append(out, c)
				continue
			}
			v := int(c - '0')
			for n := 1; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			out = append(out, byte(v))
		}
	}
	return out
}

func printableOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' {
			return r
		}
		return -1
	}, s)
}

func mostlyPrintable(s string) bool {
	n, ok := 0, 0
	for _, r := range s {
		n++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			ok++
		}
	}
	return n > 0 && ok*2 > n
}
