package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	docxDefaultPart     = "word/document.xml"
	contentTypesPart    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	pptxSlidePrefix     = "ppt/slides/slide"
	openDocumentContent = "content.xml"
)

var (
	// <w:t>, <a:t> and <text:*> runs, with any attributes.
	wordText  = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	slideText = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
	odfText   = regexp.MustCompile(`<text:(?:p|h|span)[^>]*>([^<]*)</text:(?:p|h|span)>`)

	overrideTag = regexp.MustCompile(`<Override[^>]*/?>`)
	partNameRe  = regexp.MustCompile(`PartName="([^"]+)"`)
	slideNumber = regexp.MustCompile(`slide(\d+)\.xml$`)
)

// docxMainPart finds the main document part from [Content_Types].xml. Attribute order varies
// between writers, so each Override element is inspected on its own.
func docxMainPart(types string) string {
	for _, tag := range overrideTag.FindAllString(types, -1) {
		if !strings.Contains(tag, `ContentType="`+docxMainContentType+`"`) {
			continue
		}
		if m := partNameRe.FindStringSubmatch(tag); m != nil {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return ""
}

// extractDOCX collects every <w:t> run of the main document part.
func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	part := docxDefaultPart
	types, err := readEntry(zr, contentTypesPart)
	if err != nil {
		return "", err
	}
	if p := docxMainPart(string(types)); p != "" {
		part = p
	}
	doc, err := readEntry(zr, part)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", errorf("DOCX", "%s not found", part)
	}
	var b strings.Builder
	collectText(&b, string(doc), wordText)
	return b.String(), nil
}

// extractPPTX collects the <a:t> runs of every slide in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		n    int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePrefix) {
			continue
		}
		if m := slideNumber.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, name: f.Name})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		data, err := readEntry(zr, s.name)
		if err != nil {
			return "", err
		}
		collectText(&b, string(data), slideText)
	}
	return b.String(), nil
}

// extractOpenDocument reads content.xml of .odt, .odp and .ods packages.
func extractOpenDocument(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	data, err := readEntry(zr, openDocumentContent)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", errorf("OpenDocument", "%s not found", openDocumentContent)
	}
	var b strings.Builder
	collectText(&b, string(data), odfText)
	return b.String(), nil
}
