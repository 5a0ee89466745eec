package placsp

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary"`
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
	Links   []atomLink  `xml:"link"`
}

// link returns the entry's href, preferring a link without a rel
// attribute (the alternate form PLACSP uses for the listing URL).
func (e atomEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

func (f atomFeed) nextHref() string {
	for _, l := range f.Links {
		if l.Rel == "next" {
			return l.Href
		}
	}
	return ""
}

// EntriesFromZip extracts the Atom entries from a monthly syndication
// archive. The main feed is the first .atom/.xml member; pagination
// "next" links point at further members inside the same archive and
// are followed until they run out or point nowhere.
func EntriesFromZip(data []byte) ([]atomEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	members := make(map[string]*zip.File, len(reader.File))
	var first string
	for _, f := range reader.File {
		members[f.Name] = f
		if first == "" && (strings.HasSuffix(f.Name, ".atom") || strings.HasSuffix(f.Name, ".xml")) {
			first = f.Name
		}
	}
	if first == "" {
		return nil, fmt.Errorf("archive contains no atom file")
	}

	var entries []atomEntry
	name := first
	for name != "" {
		member, ok := members[name]
		if !ok {
			break
		}
		delete(members, name) // guard against next-link cycles

		feed, err := readFeed(member)
		if err != nil {
			return entries, err
		}
		entries = append(entries, feed.Entries...)
		name = feed.nextHref()
	}

	return entries, nil
}

func readFeed(member *zip.File) (*atomFeed, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive member %s: %w", member.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive member %s: %w", member.Name, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(content, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse atom file %s: %w", member.Name, err)
	}
	return &feed, nil
}
