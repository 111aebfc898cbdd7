package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

const documentPart = "word/document.xml"

// DOCXParser reads the main document part of an OOXML word file and
// returns one schema.Document per page. Pages are delimited by explicit
// page breaks only, the file carries no rendered layout.
type DOCXParser struct{}

var _ parser.Parser = (*DOCXParser)(nil)

func (p *DOCXParser) Parse(ctx context.Context, reader io.Reader, opts ...parser.Option) ([]*schema.Document, error) {
	options := parser.GetCommonOptions(nil, opts...)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}

	part, err := archive.Open(documentPart)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer part.Close()

	pages, err := readPages(ctx, part)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}

	docs := make([]*schema.Document, 0, len(pages))
	for i, page := range pages {
		meta := map[string]any{"page": i + 1}
		for k, v := range options.ExtraMeta {
			meta[k] = v
		}
		if options.URI != "" {
			meta["source"] = options.URI
		}
		docs = append(docs, &schema.Document{Content: page, MetaData: meta})
	}

	return docs, nil
}

// readPages walks the WordprocessingML token stream collecting run text.
func readPages(ctx context.Context, r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		pages  []string
		page   strings.Builder
		inText bool
		// run depth; tab, cr and br outside a w:r are layout definitions
		inRun int
	)

	flush := func() {
		pages = append(pages, strings.TrimRight(page.String(), " \t\n"))
		page.Reset()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				if inRun > 0 {
					page.WriteByte('\t')
				}
			case "cr":
				if inRun > 0 {
					page.WriteByte('\n')
				}
			case "br":
				if inRun == 0 {
					continue
				}
				if isPageBreak(t) {
					flush()
				} else {
					page.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if inRun > 0 {
					inRun--
				}
			case "t":
				inText = false
			case "p":
				page.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				page.Write(t)
			}
		}
	}

	flush()
	return pages, nil
}

func isPageBreak(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Local == "type" {
			return attr.Value == "page"
		}
	}
	return false
}
