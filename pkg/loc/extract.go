package loc

import (
	"fmt"
	"strings"
)

// skipOriginalFormats are original_format types whose records never carry
// downloadable images worth emitting: collections link to other searches and
// web pages are archived HTML.
var skipOriginalFormats = []string{"collection", "web page"}

// Image is one resolution variant of an item's image
type Image struct {
	// URL is the direct asset URL
	URL string
	// Width and Height are the pixel dimensions, 0 when unknown
	Width  int
	Height int

	// Item context, used by the aria2c output format
	ItemID     string
	Title      string
	Collection string
}

// Ref returns the emitted form of the image URL. When both dimensions are
// known they are appended as a URL fragment, preserving resolution context
// for downstream tooling without altering what the server sees.
func (img Image) Ref() string {
	if img.Height > 0 && img.Width > 0 {
		return fmt.Sprintf("%s#h=%d&w=%d", img.URL, img.Height, img.Width)
	}
	return img.URL
}

// ExtractImages yields the image URLs present in one result page, in page
// item order, then descriptor and variant order as presented by the API.
// Records lacking image fields contribute nothing; extraction never fails.
func ExtractImages(page *SearchResponse) []Image {
	if page == nil {
		return nil
	}

	var images []Image
	for _, rec := range page.Results {
		if skipRecord(rec) {
			continue
		}
		images = append(images, extractRecord(rec)...)
	}
	return images
}

// skipRecord reports whether the record's original_format marks it as a
// non-image entry
func skipRecord(rec Record) bool {
	for _, format := range rec.Strings("original_format") {
		format = strings.ToLower(format)
		for _, skip := range skipOriginalFormats {
			if format == skip {
				return true
			}
		}
	}
	return false
}

// extractRecord probes one record for image descriptors and their
// resolution variants
func extractRecord(rec Record) []Image {
	descriptors, ok := rec.Slice("resources")
	if !ok {
		return nil
	}

	itemID, _ := rec.String("id")
	title, _ := rec.String("title")
	collection, _ := rec.String("item.source_collection")

	var images []Image
	for _, d := range descriptors {
		descriptor, ok := asRecord(d)
		if !ok {
			continue
		}

		variants, ok := descriptor.Slice("files")
		if !ok {
			continue
		}

		for _, v := range variants {
			// The files field is sometimes a flat list of variants and
			// sometimes a list of variant lists, one per page of the item
			switch entry := v.(type) {
			case map[string]interface{}:
				if img, ok := variantImage(Record(entry), itemID, title, collection); ok {
					images = append(images, img)
				}
			case []interface{}:
				for _, inner := range entry {
					variant, ok := asRecord(inner)
					if !ok {
						continue
					}
					if img, ok := variantImage(variant, itemID, title, collection); ok {
						images = append(images, img)
					}
				}
			}
		}
	}
	return images
}

// variantImage builds an Image from one resolution variant, if it carries a URL
func variantImage(variant Record, itemID, title, collection string) (Image, bool) {
	url, ok := variant.String("url")
	if !ok || url == "" {
		return Image{}, false
	}

	width, _ := variant.Int("width")
	height, _ := variant.Int("height")

	return Image{
		URL:        url,
		Width:      width,
		Height:     height,
		ItemID:     itemID,
		Title:      title,
		Collection: collection,
	}, true
}
