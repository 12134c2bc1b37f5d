package statement

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the file encoding detection looks at.
const sniffSize = 4096

var boms = []struct {
	mark []byte
	dec  encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// charsets maps chardet results to decoders. Anything unlisted falls back to Windows-1252,
// which is what spreadsheet exports from internet banking portals usually are.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// utf8Reader returns r decoded to UTF-8. A UTF-8 BOM is stripped, UTF-16 is decoded
// from its BOM, valid UTF-8 passes through, and everything else is guessed by chardet.
func utf8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.dec == nil {
			_, _ = br.Discard(len(b.mark))
			return br, nil
		}

		return transform.NewReader(br, b.dec.NewDecoder()), nil
	}

	if looksUTF8(head, len(head) == sniffSize) {
		return br, nil
	}

	dec := encoding.Encoding(charmap.Windows1252)

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == "UTF-8" {
			return br, nil
		}

		if e, ok := charsets[res.Charset]; ok {
			dec = e
		}
	}

	return transform.NewReader(br, dec.NewDecoder()), nil
}

// looksUTF8 reports whether head is valid UTF-8, ignoring a rune cut off at the end
// of a truncated sniff window.
func looksUTF8(head []byte, truncated bool) bool {
	if utf8.Valid(head) {
		return true
	}

	if !truncated {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut < len(head); cut++ {
		if utf8.Valid(head[:len(head)-cut]) {
			return true
		}
	}

	return false
}
