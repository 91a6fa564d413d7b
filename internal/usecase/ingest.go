package usecase

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/neuralsearch/backend/internal/domain"
)

// productElement mirrors one <product> element of a tenant feed. Every field
// is optional; absent fields decode to the empty string.
type productElement struct {
	ID          string `xml:"id"`
	Name        string `xml:"name"`
	Model       string `xml:"model"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	Price       string `xml:"price"`
	Image       string `xml:"image"`
	URL         string `xml:"url"`
}

// ParseCatalog parses a raw XML product feed into product records. The feed
// may wrap <product> elements in any container at any depth. Returns
// domain.ErrMalformedFeed for documents that are not well-formed XML and
// domain.ErrEmptyFeed for well-formed documents with no products.
func ParseCatalog(feed string) ([]domain.Product, error) {
	decoder := xml.NewDecoder(strings.NewReader(feed))

	var products []domain.Product
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrMalformedFeed
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "product" {
			continue
		}

		var elem productElement
		if err := decoder.DecodeElement(&elem, &start); err != nil {
			return nil, domain.ErrMalformedFeed
		}

		products = append(products, domain.Product{
			ID:          strings.TrimSpace(elem.ID),
			Name:        strings.TrimSpace(elem.Name),
			Model:       strings.TrimSpace(elem.Model),
			Description: strings.TrimSpace(elem.Description),
			Category:    strings.TrimSpace(elem.Category),
			Price:       strings.TrimSpace(elem.Price),
			Image:       strings.TrimSpace(elem.Image),
			URL:         strings.TrimSpace(elem.URL),
		})
	}

	if len(products) == 0 {
		return nil, domain.ErrEmptyFeed
	}

	return products, nil
}
