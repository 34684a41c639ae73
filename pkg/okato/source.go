package okato

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the charset of the published OKATO exports.
const DefaultEncoding = "windows-1251"

// RecordSource yields records in file order and io.EOF at the end.
type RecordSource interface {
	Next() (Record, error)
}

// SourceOptions describes the CSV layout.
type SourceOptions struct {
	Encoding  string // empty means DefaultEncoding
	Delimiter rune   // zero means ';'
}

// Source reads OKATO rows from a delimited file.
type Source struct {
	r       *bufio.Reader
	comma   rune
	closer  io.Closer
	ordinal int64
}

// OpenSource opens the export at path. The returned Source owns the file
// handle until Close.
func OpenSource(path string, opts SourceOptions) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputAccess, err)
	}
	s, err := NewSource(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewSource wraps r, transcoding it to UTF-8 when the encoding requires it.
func NewSource(r io.Reader, opts SourceOptions) (*Source, error) {
	enc := opts.Encoding
	if enc == "" {
		enc = DefaultEncoding
	}

	var reader io.Reader = r
	if !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(reader, e.NewDecoder())
	}

	comma := ';'
	if opts.Delimiter != 0 {
		comma = opts.Delimiter
	}
	return &Source{r: bufio.NewReader(reader), comma: comma}, nil
}

// Next returns the next record. Blanks around delimiters are dropped;
// quoted content is kept as written.
func (s *Source) Next() (Record, error) {
	line, err := s.readRecord()
	if err != nil {
		return Record{}, err
	}
	s.ordinal++

	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = s.comma
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return Record{}, &RecordError{Ordinal: s.ordinal, Kind: ErrMalformedRecord, Err: err}
	}
	return ParseRecord(fields, s.ordinal)
}

// readRecord reads physical lines until the quotes of a record balance and
// returns the record with its fields trimmed outside quotes. Blank lines are
// skipped.
func (s *Source) readRecord() (string, error) {
	var pending strings.Builder
	for {
		line, err := s.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %w", ErrInputAccess, err)
		}
		if line == "" && errors.Is(err, io.EOF) {
			if pending.Len() == 0 {
				return "", io.EOF
			}
			// Unterminated quote at end of input; let the parser report it.
			out, _ := trimOutsideQuotes(pending.String(), s.comma)
			return out, nil
		}
		pending.WriteString(line)

		out, complete := trimOutsideQuotes(pending.String(), s.comma)
		switch {
		case !complete && err == nil:
			continue
		case out == "" && err == nil:
			pending.Reset()
			continue
		case out == "":
			return "", io.EOF
		}
		return out, nil
	}
}

// trimOutsideQuotes splits rec on comma outside quoted fields, trims blanks
// around every field and joins the fields again. It reports false when rec
// ends inside a quoted field. A quote opens a quoted field only as the first
// non-blank character of the field.
func trimOutsideQuotes(rec string, comma rune) (string, bool) {
	rec = strings.TrimRight(rec, "\r\n")

	var (
		fields  []string
		field   strings.Builder
		atStart = true
		inQuote bool
	)
	runes := []rune(rec)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuote:
			field.WriteRune(c)
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuote = false
				}
			}
		case c == comma:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
			atStart = true
		default:
			if atStart && c == '"' {
				inQuote = true
			}
			if !unicode.IsSpace(c) {
				atStart = false
			}
			field.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	if inQuote {
		return rec, false
	}
	if len(fields) == 1 && fields[0] == "" {
		return "", true
	}
	return strings.Join(fields, string(comma)), true
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
