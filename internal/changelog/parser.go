// Package changelog parses the output of `sscm cc`.
//
// The first line is a "total-N" summary and is skipped. Every following line
// is one change made of seven fields in one of two forms, chosen by the
// line's first byte:
//
//	<path><name><version><action><date><comment><author>
//	>path>name>version>action>date>comment>author
//
// In the bracket form every field is one opener byte followed by the value
// and a closing '>'. In the '>' form the author may run to the end of the
// line. There is no escaping. A '>' inside a value ends that field early and
// shifts the rest of the line. Parsing stops at the first line that does not
// carry all seven fields; the records read before it are kept.
package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wahlandcase/sscmpoll/internal/identity"
	"github.com/wahlandcase/sscmpoll/internal/models"

	"github.com/rs/zerolog"
)

const (
	fieldCount  = 7
	delimiter   = '>'
	opener      = '<'
	emptyMarker = "total-0"
)

// Parser turns raw changelog output into a ChangeSet
type Parser struct {
	// Directory registers authors; nil skips registration
	Directory identity.Directory
	// Build is stamped on the resulting ChangeSet
	Build  int
	Logger zerolog.Logger
}

// Parse reads r to the end or to the first malformed line. A malformed line
// is not an error: the returned set has Truncated set. Only read failures
// return an error, together with whatever was parsed.
func (p *Parser) Parse(r io.Reader) (*models.ChangeSet, error) {
	set := models.NewChangeSet(p.Build)
	br := bufio.NewReader(r)

	for lineNo := 1; ; lineNo++ {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return set, fmt.Errorf("failed to read changelog: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")

		// summary line
		if lineNo == 1 {
			if readErr != nil {
				break
			}
			continue
		}

		if strings.HasPrefix(line, emptyMarker) {
			break
		}

		record, ok := ParseRecord(line)
		if !ok {
			set.Truncated = true
			set.StoppedAtLine = lineNo
			p.Logger.Warn().Int("line", lineNo).Int("parsed", set.Len()).Msg("malformed changelog line, stopping")
			break
		}
		p.register(record)
		set.Add(record)

		if readErr != nil {
			break
		}
	}

	return set, nil
}

// ParseFile parses a changelog file
func (p *Parser) ParseFile(path string) (*models.ChangeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f)
}

func (p *Parser) register(r models.ChangeRecord) {
	if p.Directory == nil || r.Author == "" {
		return
	}
	p.Directory.Get(r.Author)
	if r.AuthorEmail != "" && !p.Directory.SetEmail(r.Author, r.AuthorEmail) {
		p.Logger.Debug().Str("author", r.Author).Msg("keeping explicitly configured email")
	}
}

// ParseRecord splits one change line into a record. It reports false when
// any of the seven fields is missing its delimiter.
func ParseRecord(line string) (models.ChangeRecord, bool) {
	var (
		fields [fieldCount]string
		rest   string
		ok     bool
	)
	if strings.HasPrefix(line, string(opener)) {
		fields, rest, ok = bracketFields(line)
	} else {
		fields, rest, ok = markerFields(line)
	}
	if !ok {
		return models.ChangeRecord{}, false
	}

	return models.ChangeRecord{
		Path:        fields[0],
		Name:        fields[1],
		Version:     fields[2],
		Action:      fields[3],
		Date:        fields[4],
		Comment:     fields[5],
		Author:      fields[6],
		AuthorEmail: trailingEmail(rest),
	}, true
}

// bracketFields reads "<value>" chunks: skip one opener byte, take up to the
// next '>' and continue after it. Every field needs its closing '>'.
func bracketFields(line string) (fields [fieldCount]string, rest string, ok bool) {
	rest = line
	for i := 0; i < fieldCount; i++ {
		end := strings.IndexByte(rest, delimiter)
		if end < 1 {
			return fields, "", false
		}
		fields[i] = rest[1:end]
		rest = rest[end+1:]
	}
	return fields, rest, true
}

// markerFields reads ">value" fields; rest keeps its leading '>'
func markerFields(line string) (fields [fieldCount]string, rest string, ok bool) {
	rest = line
	for i := 0; i < fieldCount; i++ {
		if len(rest) == 0 || rest[0] != delimiter {
			return fields, "", false
		}
		rest = rest[1:]

		end := strings.IndexByte(rest, delimiter)
		if end < 0 {
			// only the author may run to the end of the line
			if i < fieldCount-1 {
				return fields, "", false
			}
			fields[i] = rest
			return fields, "", true
		}
		fields[i] = rest[:end]
		rest = rest[end:]
	}
	return fields, rest, true
}

// trailingEmail returns an optional eighth field when it looks like an
// address, in either ">email" or "<email>" form
func trailingEmail(rest string) string {
	if len(rest) == 0 || (rest[0] != delimiter && rest[0] != opener) {
		return ""
	}
	rest = rest[1:]
	if end := strings.IndexByte(rest, delimiter); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)
	if !strings.Contains(rest, "@") {
		return ""
	}
	return rest
}
