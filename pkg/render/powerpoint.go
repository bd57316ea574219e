package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"docwriter/pkg/combine"
	"docwriter/pkg/ooxml"
)

const (
	pptPresentationType = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	pptSlideType        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	pptLayoutType       = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	pptMasterType       = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	pptThemeType        = "application/vnd.openxmlformats-officedocument.theme+xml"

	relsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
	relOfficeDoc  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	pptNamespaces = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	emuPerInch = 914400
)

// Text box geometry in EMUs: a title band and a content area below it.
var (
	titleBox   = box{x: emuPerInch / 2, y: emuPerInch / 2, cx: 9 * emuPerInch, cy: emuPerInch}
	contentBox = box{x: emuPerInch / 2, y: emuPerInch * 3 / 2, cx: 9 * emuPerInch, cy: 4 * emuPerInch}
)

type box struct{ x, y, cx, cy int }

// PowerPoint renders a .pptx deck: one slide with the structure, a section
// slide, then one slide per file with its path as title and one paragraph
// per content line.
type PowerPoint struct{}

func (PowerPoint) Render(w io.Writer, doc combine.Document) error {
	pkg := ooxml.NewPackage(w)
	slides := 0

	addSlide := func(title string, lines []string, sizeHundredths int) error {
		slides++
		name := fmt.Sprintf("ppt/slides/slide%d.xml", slides)
		err := pkg.WritePart(name, pptSlideType, func(bw *bufio.Writer) error {
			bw.WriteString(ooxml.XMLHeader)
			bw.WriteString(`<p:sld ` + pptNamespaces + `><p:cSld><p:spTree>`)
			bw.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
			bw.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
			writeTextBox(bw, 2, "Title", titleBox, []string{title}, 2400)
			if lines != nil {
				writeTextBox(bw, 3, "Content", contentBox, lines, sizeHundredths)
			}
			_, err := bw.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
			return err
		})
		if err != nil {
			return err
		}
		return pkg.WriteString(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slides), "", ooxml.XMLHeader+
			`<Relationships xmlns="`+relsNamespace+`">`+
			`<Relationship Id="rId1" Type="`+relOfficeDoc+`/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`+
			`</Relationships>`)
	}

	structure := doc.Structure
	if structure == nil {
		structure = []string{}
	}
	if err := addSlide(StructureHeading, structure, 1200); err != nil {
		return err
	}
	if err := addSlide(ContentsHeading, nil, 0); err != nil {
		return err
	}
	for record := range doc.Files {
		lines := splitLines(record.Content)
		if lines == nil {
			lines = []string{}
		}
		if err := addSlide(record.Path, lines, 1000); err != nil {
			return err
		}
	}

	if err := writeDeckParts(pkg, doc.Root, slides); err != nil {
		return err
	}
	return pkg.Close()
}

func writeTextBox(bw *bufio.Writer, id int, name string, b box, lines []string, sizeHundredths int) {
	fmt.Fprintf(bw, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(bw, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, b.x, b.y, b.cx, b.cy)
	bw.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	bw.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	if len(lines) == 0 {
		bw.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		fmt.Fprintf(bw, `<a:p><a:r><a:rPr lang="en-US" sz="%d" dirty="0"/><a:t>%s</a:t></a:r></a:p>`, sizeHundredths, ooxml.Escape(line))
	}
	bw.WriteString(`</p:txBody></p:sp>`)
}

// writeDeckParts writes the presentation part and the master, layout and
// theme it depends on. It runs last because it lists every slide.
func writeDeckParts(pkg *ooxml.Package, title string, slides int) error {
	var pres, presRels strings.Builder
	pres.WriteString(ooxml.XMLHeader)
	pres.WriteString(`<p:presentation ` + pptNamespaces + ` saveSubsetFonts="1">`)
	pres.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst><p:sldIdLst>`)
	presRels.WriteString(ooxml.XMLHeader + `<Relationships xmlns="` + relsNamespace + `">`)
	presRels.WriteString(`<Relationship Id="rId1" Type="` + relOfficeDoc + `/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&pres, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%s/slide" Target="slides/slide%d.xml"/>`, i+1, relOfficeDoc, i)
	}
	fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%s/theme" Target="theme/theme1.xml"/>`, slides+2, relOfficeDoc)
	presRels.WriteString(`</Relationships>`)
	pres.WriteString(`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000" type="screen4x3"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`)

	parts := []struct{ name, contentType, body string }{
		{"_rels/.rels", "", ooxml.XMLHeader + `<Relationships xmlns="` + relsNamespace + `">` +
			`<Relationship Id="rId1" Type="` + relOfficeDoc + `/officeDocument" Target="ppt/presentation.xml"/>` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
			`</Relationships>`},
		{"docProps/core.xml", ooxml.ContentTypeCoreProps, ooxml.CoreProperties(title)},
		{"ppt/presentation.xml", pptPresentationType, pres.String()},
		{"ppt/_rels/presentation.xml.rels", "", presRels.String()},
		{"ppt/slideMasters/slideMaster1.xml", pptMasterType, slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "", ooxml.XMLHeader + `<Relationships xmlns="` + relsNamespace + `">` +
			`<Relationship Id="rId1" Type="` + relOfficeDoc + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
			`<Relationship Id="rId2" Type="` + relOfficeDoc + `/theme" Target="../theme/theme1.xml"/>` +
			`</Relationships>`},
		{"ppt/slideLayouts/slideLayout1.xml", pptLayoutType, slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "", ooxml.XMLHeader + `<Relationships xmlns="` + relsNamespace + `">` +
			`<Relationship Id="rId1" Type="` + relOfficeDoc + `/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
			`</Relationships>`},
		{"ppt/theme/theme1.xml", pptThemeType, theme},
	}
	for _, p := range parts {
		if err := pkg.WriteString(p.name, p.contentType, p.body); err != nil {
			return err
		}
	}
	return nil
}

const emptyShapeTree = `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr></p:spTree>`

const slideMaster = ooxml.XMLHeader +
	`<p:sldMaster ` + pptNamespaces + `><p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` + emptyShapeTree + `</p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`<p:txStyles><p:titleStyle><a:lvl1pPr><a:defRPr sz="2400"/></a:lvl1pPr></p:titleStyle>` +
	`<p:bodyStyle><a:lvl1pPr><a:defRPr sz="1200"/></a:lvl1pPr></p:bodyStyle>` +
	`<p:otherStyle><a:lvl1pPr><a:defRPr sz="1200"/></a:lvl1pPr></p:otherStyle></p:txStyles></p:sldMaster>`

const slideLayout = ooxml.XMLHeader +
	`<p:sldLayout ` + pptNamespaces + ` type="blank" preserve="1"><p:cSld name="Blank">` + emptyShapeTree + `</p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

const theme = ooxml.XMLHeader +
	`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="docwriter"><a:themeElements>` +
	`<a:clrScheme name="docwriter">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F497D"/></a:dk2><a:lt2><a:srgbClr val="EEECE1"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4F81BD"/></a:accent1><a:accent2><a:srgbClr val="C0504D"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="9BBB59"/></a:accent3><a:accent4><a:srgbClr val="8064A2"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="4BACC6"/></a:accent5><a:accent6><a:srgbClr val="F79646"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0000FF"/></a:hlink><a:folHlink><a:srgbClr val="800080"/></a:folHlink></a:clrScheme>` +
	`<a:fontScheme name="docwriter">` +
	`<a:majorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme>` +
	`<a:fmtScheme name="docwriter">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="25400"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="38100"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme></a:themeElements></a:theme>`
