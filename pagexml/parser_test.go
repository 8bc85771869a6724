package pagexml

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/facsimile/model"
)

const samplePage = `<?xml version="1.0" encoding="UTF-8"?>
<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15">
  <Metadata>
    <Creator>Transkribus</Creator>
    <Created>2023-01-01T10:00:00</Created>
    <LastChange>2023-02-01T10:00:00</LastChange>
  </Metadata>
  <Page imageFilename="folio_12r.jpg" imageWidth="2000" imageHeight="3000" status="GT">
    <ReadingOrder>
      <OrderedGroup id="ro_1">
        <RegionRefIndexed index="1" regionRef="r2"/>
        <RegionRefIndexed index="0" regionRef="r1"/>
      </OrderedGroup>
    </ReadingOrder>
    <TextRegion id="r1" type="heading">
      <Coords points="100,100 900,100 900,200 100,200"/>
      <TextLine id="l1">
        <Coords points="110,110 890,110 890,190 110,190"/>
        <Baseline points="110,180 890,180"/>
        <TextEquiv><Unicode>Hello</Unicode></TextEquiv>
      </TextLine>
      <TextEquiv><Unicode>Hello</Unicode></TextEquiv>
    </TextRegion>
    <TextRegion id="r2">
      <Coords points="100,300 900,300 900,500 100,500"/>
      <TextLine id="l2">
        <Coords points="110,310 890,310 890,390 110,390"/>
        <Word id="w1"><Coords points="110,310 300,310 300,390 110,390"/><TextEquiv><Unicode>big</Unicode></TextEquiv></Word>
        <Word id="w2"><Coords points="320,310 600,310 600,390 320,390"/><TextEquiv><Unicode>World</Unicode></TextEquiv></Word>
        <TextEquiv><Unicode>big World</Unicode></TextEquiv>
      </TextLine>
      <TextLine>
        <Coords points="bad coords"/>
        <TextEquiv><Unicode></Unicode></TextEquiv>
      </TextLine>
    </TextRegion>
  </Page>
</PcGts>`

// ============================================================================
// Parse Tests
// ============================================================================

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Metadata.Creator != "Transkribus" || doc.Metadata.LastModified != "2023-02-01T10:00:00" || doc.Metadata.Status != "GT" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.Page.ImageFilename != "folio_12r.jpg" || doc.Page.Width != 2000 || doc.Page.Height != 3000 {
		t.Errorf("page = %+v", doc.Page)
	}

	if len(doc.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(doc.Regions))
	}
	r1, r2 := doc.Regions[0], doc.Regions[1]
	if r1.Type != "heading" || r2.Type != DefaultRegionType {
		t.Errorf("types = %q, %q", r1.Type, r2.Type)
	}
	if got := r1.BBox(); got != (model.BBox{X: 100, Y: 100, Width: 800, Height: 100}) {
		t.Errorf("r1 bbox = %+v", got)
	}

	l1 := r1.Lines[0]
	if l1.Text != "Hello" || len(l1.Baseline) != 2 || len(l1.Coordinates) != 4 {
		t.Errorf("l1 = %+v", l1)
	}

	if len(r2.Lines) != 2 {
		t.Fatalf("r2 has %d lines, want 2", len(r2.Lines))
	}
	l2 := r2.Lines[0]
	if l2.Text != "big World" || len(l2.Words) != 2 || l2.Words[1].Text != "World" {
		t.Errorf("l2 = %+v", l2)
	}

	empty := r2.Lines[1]
	if empty.ID != "r2_line_1" || empty.Text != "" || len(empty.Coordinates) != 0 {
		t.Errorf("unnamed line = %+v", empty)
	}
	if !empty.BBox().IsEmpty() {
		t.Error("malformed coords should give an empty box")
	}

	if strings.Join(doc.ReadingOrder, ",") != "r1,r2" {
		t.Errorf("reading order = %v, want [r1 r2]", doc.ReadingOrder)
	}
}

func TestParseDefaults(t *testing.T) {
	src := `<PcGts><Page imageWidth="x">
		<TextRegion><TextLine><Word><TextEquiv><Unicode>a</Unicode></TextEquiv></Word><Word><TextEquiv><Unicode>b</Unicode></TextEquiv></Word></TextLine></TextRegion>
		<TextRegion><TextLine/></TextRegion>
	</Page></PcGts>`

	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Page.Width != 0 {
		t.Errorf("malformed width = %d, want 0", doc.Page.Width)
	}
	if doc.Regions[0].ID != "region_0" || doc.Regions[1].ID != "region_1" {
		t.Errorf("ids = %q, %q", doc.Regions[0].ID, doc.Regions[1].ID)
	}
	// default line ids stay unique across regions
	if got, other := doc.Regions[0].Lines[0].ID, doc.Regions[1].Lines[0].ID; got != "region_0_line_0" || other != "region_1_line_0" {
		t.Errorf("line ids = %q, %q", got, other)
	}
	if doc.Regions[0].Lines[0].Text != "a b" {
		t.Errorf("line text from words = %q, want %q", doc.Regions[0].Lines[0].Text, "a b")
	}
	if len(doc.ReadingOrder) != 0 {
		t.Errorf("reading order = %v, want empty", doc.ReadingOrder)
	}
}

func TestParseNestedAndTableRegions(t *testing.T) {
	src := `<PcGts><Page>
		<TextRegion id="outer"><TextRegion id="inner"/></TextRegion>
		<TableRegion id="t"><TextRegion id="cell"/></TableRegion>
	</Page></PcGts>`

	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range doc.Regions {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "outer,inner,cell" {
		t.Errorf("regions = %v", ids)
	}
}

func TestParseReadingOrderGroups(t *testing.T) {
	tests := []struct {
		name string
		ro   string
		want string
	}{
		{
			name: "unordered plain refs",
			ro:   `<UnorderedGroup><RegionRef regionRef="b"/><RegionRef regionRef="a"/></UnorderedGroup>`,
			want: "b,a",
		},
		{
			name: "nested indexed groups",
			ro: `<OrderedGroup>
				<OrderedGroupIndexed index="1" regionRef="c"><RegionRefIndexed index="0" regionRef="d"/></OrderedGroupIndexed>
				<RegionRefIndexed index="0" regionRef="a"/>
				<RegionRefIndexed index="2" regionRef="e"/>
			</OrderedGroup>`,
			want: "a,c,d,e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `<PcGts><Page><ReadingOrder>` + tt.ro + `</ReadingOrder></Page></PcGts>`
			doc, err := Parse(strings.NewReader(src))
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Join(doc.ReadingOrder, ","); got != tt.want {
				t.Errorf("order = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePage2010Points(t *testing.T) {
	src := `<PcGts><Page><TextRegion id="r"><Coords><Point x="10" y="20"/><Point x="30" y="60"/></Coords></TextRegion></Page></PcGts>`
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Regions[0].BBox(); got != (model.BBox{X: 10, Y: 20, Width: 20, Height: 40}) {
		t.Errorf("bbox = %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("<PcGts><Page>")); err == nil {
		t.Error("expected error for truncated XML")
	}
	if _, err := Parse(strings.NewReader("<PcGts/>")); !errors.Is(err, ErrNoPage) {
		t.Errorf("error = %v, want ErrNoPage", err)
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.xml")
	if err := os.WriteFile(path, []byte(samplePage), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if doc.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", doc.LineCount())
	}
}
