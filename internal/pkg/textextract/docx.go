package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoDocumentPart = errors.New("docx: word/document.xml not found")

// DOCX returns the paragraphs of a Word document separated by blank lines.
// Table rows become one line with cells joined by " | ".
func DOCX(b []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentText(rc)
	}
	return "", errNoDocumentPart
}

func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		blocks    []string
		para      strings.Builder
		cell      []string
		row       []string
		tableDeep int
		inText    bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "tbl":
				tableDeep++
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := strings.TrimSpace(para.String())
				para.Reset()
				if text == "" {
					continue
				}
				if tableDeep > 0 {
					cell = append(cell, text)
				} else {
					blocks = append(blocks, text)
				}
			case "tc":
				if text := strings.Join(cell, " "); text != "" {
					row = append(row, text)
				}
				cell = cell[:0]
			case "tr":
				if len(row) > 0 {
					blocks = append(blocks, strings.Join(row, " | "))
				}
				row = row[:0]
			case "tbl":
				if tableDeep > 0 {
					tableDeep--
				}
			}
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}
