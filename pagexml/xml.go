package pagexml

import "encoding/xml"

// XML structures for PAGE (Page Analysis and Ground-truth Elements).
// Element names are matched without namespace so every schema version
// (2010 through 2019) decodes.

type pcGtsXML struct {
	XMLName  xml.Name     `xml:"PcGts"`
	Metadata *metadataXML `xml:"Metadata"`
	Page     *pageXML     `xml:"Page"`
}

type metadataXML struct {
	Creator    string `xml:"Creator"`
	Created    string `xml:"Created"`
	LastChange string `xml:"LastChange"`
}

type pageXML struct {
	ImageFilename string           `xml:"imageFilename,attr"`
	ImageWidth    string           `xml:"imageWidth,attr"`
	ImageHeight   string           `xml:"imageHeight,attr"`
	Status        string           `xml:"status,attr"`
	ReadingOrder  *readingOrderXML `xml:"ReadingOrder"`
	TextRegions   []textRegionXML  `xml:"TextRegion"`
	TableRegions  []tableRegionXML `xml:"TableRegion"`
}

type readingOrderXML struct {
	OrderedGroup   *groupXML `xml:"OrderedGroup"`
	UnorderedGroup *groupXML `xml:"UnorderedGroup"`
}

// groupXML covers OrderedGroup, UnorderedGroup and their indexed variants
type groupXML struct {
	ID        string         `xml:"id,attr"`
	Index     int            `xml:"index,attr"`
	RegionRef string         `xml:"regionRef,attr"`
	Refs      []regionRefXML `xml:"RegionRefIndexed"`
	PlainRefs []regionRefXML `xml:"RegionRef"`
	Ordered   []groupXML     `xml:"OrderedGroupIndexed"`
	Unordered []groupXML     `xml:"UnorderedGroupIndexed"`

	// unindexed nested groups inside an UnorderedGroup
	OrderedPlain   []groupXML `xml:"OrderedGroup"`
	UnorderedPlain []groupXML `xml:"UnorderedGroup"`
}

type regionRefXML struct {
	Index     int    `xml:"index,attr"`
	RegionRef string `xml:"regionRef,attr"`
}

type coordsXML struct {
	Points string     `xml:"points,attr"`
	Point  []pointXML `xml:"Point"` // PAGE 2010
}

type pointXML struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

type textEquivXML struct {
	Index   string `xml:"index,attr"`
	Unicode string `xml:"Unicode"`
}

type textRegionXML struct {
	ID          string          `xml:"id,attr"`
	Type        string          `xml:"type,attr"`
	Coords      *coordsXML      `xml:"Coords"`
	TextLines   []textLineXML   `xml:"TextLine"`
	TextEquivs  []textEquivXML  `xml:"TextEquiv"`
	TextRegions []textRegionXML `xml:"TextRegion"` // nested regions
}

type tableRegionXML struct {
	TextRegions []textRegionXML `xml:"TextRegion"`
}

type textLineXML struct {
	ID         string         `xml:"id,attr"`
	Coords     *coordsXML     `xml:"Coords"`
	Baseline   *coordsXML     `xml:"Baseline"`
	Words      []wordXML      `xml:"Word"`
	TextEquivs []textEquivXML `xml:"TextEquiv"`
}

type wordXML struct {
	ID         string         `xml:"id,attr"`
	Coords     *coordsXML     `xml:"Coords"`
	TextEquivs []textEquivXML `xml:"TextEquiv"`
}
