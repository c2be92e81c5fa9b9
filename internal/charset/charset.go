// Package charset implements the text decoding policy for resource loads:
// an explicitly requested encoding always wins, a charset declared in the
// resource's content type is honored next, and otherwise a per-scheme
// default applies. The defaults mirror common platform conventions: UTF-8
// for files, Latin-1 for HTTP responses without a declared charset, and
// US-ASCII for data URIs.
package charset

import (
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// Names of the internally handled encodings. Everything else goes through
// the IANA name index of x/text.
const (
	nameUTF8  = "utf-8"
	nameASCII = "us-ascii"
)

// Decode decodes raw resource bytes to text.
//
// encoding is the caller-requested charset name, or empty for none. An
// explicit but unknown name is an error. scheme is the final (normalized)
// URI scheme the bytes were loaded from, and contentType the
// transport-level media type, if any; a declared charset is honored only
// when recognized, otherwise the per-scheme default applies. A decode
// failure is returned as an error; no replacement characters are
// substituted.
func Decode(raw []byte, encoding, scheme, contentType string) (string, error) {
	if encoding != "" {
		return decodeAs(raw, encoding)
	}
	if cs := declaredCharset(contentType); cs != "" && recognized(cs) {
		return decodeAs(raw, cs)
	}

	return decodeAs(raw, defaultFor(scheme))
}

// recognized reports whether a charset name can be decoded.
func recognized(name string) bool {
	switch normalize(name) {
	case nameUTF8, nameASCII, "iso-8859-1":
		return true
	}
	_, err := htmlindex.Get(name)

	return err == nil
}

// declaredCharset extracts the charset parameter from a Content-Type
// value, or returns "" when there is none or the value is unparsable.
func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	return params["charset"]
}

// defaultFor returns the default charset name for a scheme.
func defaultFor(scheme string) string {
	switch scheme {
	case "http", "https":
		return "iso-8859-1"
	case "data":
		return nameASCII
	default:
		// file and anything registered beyond the built-in schemes.
		return nameUTF8
	}
}

func decodeAs(raw []byte, name string) (string, error) {
	switch normalize(name) {
	case nameUTF8:
		// x/text's UTF-8 decoder substitutes U+FFFD for invalid input;
		// a strict validity check is required instead.
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid UTF-8 byte sequence")
		}

		return string(raw), nil

	case nameASCII:
		for i, b := range raw {
			if b > 0x7f {
				return "", fmt.Errorf("non-ASCII byte 0x%02x at offset %d", b, i)
			}
		}

		return string(raw), nil

	case "iso-8859-1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}

		return string(out), nil

	default:
		enc, err := htmlindex.Get(name)
		if err != nil {
			return "", fmt.Errorf("unrecognized charset %q: %w", name, err)
		}
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}

		return string(out), nil
	}
}

func normalize(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return nameUTF8
	case "us-ascii", "ascii":
		return nameASCII
	case "iso-8859-1", "latin-1", "latin1", "iso8859-1":
		return "iso-8859-1"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}
