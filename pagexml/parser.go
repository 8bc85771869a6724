package pagexml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/facsimile/model"
)

// ErrNoPage is returned when the document has no Page element
var ErrNoPage = errors.New("PAGE XML has no Page element")

// DefaultRegionType is assigned to regions without a type attribute
const DefaultRegionType = "paragraph"

// ParseFile parses the PAGE XML file at path
func ParseFile(path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a PAGE XML document.
//
// Regions are collected in document order, including regions nested in
// other regions or in table cells. A region or line without an id gets
// region_N (N counting all regions) or line_N (N counting the lines of its
// region). Coordinates that fail to parse are dropped, never fatal. The
// reading order is left empty when the document declares none.
func Parse(r io.Reader) (*model.Document, error) {
	var root pcGtsXML
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing PAGE XML: %w", err)
	}
	if root.Page == nil {
		return nil, ErrNoPage
	}

	doc := &model.Document{
		Page: model.Page{
			ImageFilename: root.Page.ImageFilename,
			Width:         atoi(root.Page.ImageWidth),
			Height:        atoi(root.Page.ImageHeight),
		},
	}
	if md := root.Metadata; md != nil {
		doc.Metadata = model.Metadata{
			Creator:      strings.TrimSpace(md.Creator),
			Created:      strings.TrimSpace(md.Created),
			LastModified: strings.TrimSpace(md.LastChange),
		}
	}
	doc.Metadata.Status = root.Page.Status

	var all []textRegionXML
	for _, rx := range root.Page.TextRegions {
		all = flatten(all, rx)
	}
	for _, tx := range root.Page.TableRegions {
		for _, rx := range tx.TextRegions {
			all = flatten(all, rx)
		}
	}
	for i, rx := range all {
		doc.Regions = append(doc.Regions, convertRegion(rx, i))
	}

	if ro := root.Page.ReadingOrder; ro != nil {
		switch {
		case ro.OrderedGroup != nil:
			doc.ReadingOrder = groupOrder(ro.OrderedGroup)
		case ro.UnorderedGroup != nil:
			doc.ReadingOrder = groupOrder(ro.UnorderedGroup)
		}
	}

	return doc, nil
}

// flatten appends rx and its nested regions, parents first
func flatten(dst []textRegionXML, rx textRegionXML) []textRegionXML {
	dst = append(dst, rx)
	for _, child := range rx.TextRegions {
		dst = flatten(dst, child)
	}
	return dst
}

func convertRegion(rx textRegionXML, index int) model.TextRegion {
	region := model.TextRegion{
		ID:          rx.ID,
		Type:        rx.Type,
		Coordinates: points(rx.Coords),
		Text:        text(rx.TextEquivs),
	}
	if region.ID == "" {
		region.ID = fmt.Sprintf("region_%d", index)
	}
	if region.Type == "" {
		region.Type = DefaultRegionType
	}

	for i, lx := range rx.TextLines {
		line := model.Line{
			ID:          lx.ID,
			Coordinates: points(lx.Coords),
			Baseline:    points(lx.Baseline),
			Text:        text(lx.TextEquivs),
		}
		if line.ID == "" {
			line.ID = fmt.Sprintf("%s_line_%d", region.ID, i)
		}

		words := make([]string, 0, len(lx.Words))
		for _, wx := range lx.Words {
			w := model.Word{
				ID:          wx.ID,
				Coordinates: points(wx.Coords),
				Text:        text(wx.TextEquivs),
			}
			line.Words = append(line.Words, w)
			if w.Text != "" {
				words = append(words, w.Text)
			}
		}
		if len(lx.TextEquivs) == 0 && len(words) > 0 {
			line.Text = strings.Join(words, " ")
		}

		region.Lines = append(region.Lines, line)
	}
	return region
}

// groupOrder flattens a reading-order group into region ids. Indexed
// children are ordered by their index attribute; unindexed references keep
// document order after them.
func groupOrder(g *groupXML) []string {
	type item struct {
		index int
		ids   []string
	}
	var items []item

	for _, ref := range g.Refs {
		items = append(items, item{ref.Index, []string{ref.RegionRef}})
	}
	for i := range g.Ordered {
		items = append(items, item{g.Ordered[i].Index, nestedOrder(&g.Ordered[i])})
	}
	for i := range g.Unordered {
		items = append(items, item{g.Unordered[i].Index, nestedOrder(&g.Unordered[i])})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].index < items[j].index })

	var order []string
	for _, it := range items {
		order = append(order, it.ids...)
	}
	for _, ref := range g.PlainRefs {
		order = append(order, ref.RegionRef)
	}
	for i := range g.OrderedPlain {
		order = append(order, nestedOrder(&g.OrderedPlain[i])...)
	}
	for i := range g.UnorderedPlain {
		order = append(order, nestedOrder(&g.UnorderedPlain[i])...)
	}
	return order
}

// nestedOrder returns the group's own region reference, if any, followed
// by its children
func nestedOrder(g *groupXML) []string {
	var ids []string
	if g.RegionRef != "" {
		ids = append(ids, g.RegionRef)
	}
	return append(ids, groupOrder(g)...)
}

func points(c *coordsXML) []model.Point {
	if c == nil {
		return nil
	}
	if strings.TrimSpace(c.Points) != "" {
		return model.ParsePoints(c.Points)
	}
	if len(c.Point) == 0 {
		return nil
	}
	pts := make([]model.Point, len(c.Point))
	for i, p := range c.Point {
		pts[i] = model.Point{X: p.X, Y: p.Y}
	}
	return pts
}

// text returns the Unicode content of the first TextEquiv, preferring the
// one with the lowest index when several are present
func text(equivs []textEquivXML) string {
	if len(equivs) == 0 {
		return ""
	}
	best := 0
	bestIndex := atoiOr(equivs[0].Index, 0)
	for i := 1; i < len(equivs); i++ {
		if idx := atoiOr(equivs[i].Index, 0); idx < bestIndex {
			best, bestIndex = i, idx
		}
	}
	return equivs[best].Unicode
}

func atoi(s string) int { return atoiOr(s, 0) }

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
