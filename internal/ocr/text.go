package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultDescription = "Extracted from poster offer"
	DefaultCategory    = "Offers"
	minNameLength      = 3
)

// Matches $10.99, 10.99, $10 and 10/-.
var priceRe = regexp.MustCompile(`(\$?\d+\.?\d{0,2})/?-?`)

// ParseText scans plain OCR text for lines that carry a price. The first
// price on a line is taken and whatever text remains becomes the name.
func ParseText(text string) []ExtractedProduct {
	products := []ExtractedProduct{}

	for _, line := range strings.Split(text, "\n") {
		m := priceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(strings.Replace(line, m[0], "", 1))
		price, err := strconv.ParseFloat(strings.TrimPrefix(m[1], "$"), 64)
		if err != nil {
			continue
		}

		if len(name) > minNameLength && price > 0 {
			products = append(products, ExtractedProduct{
				Name:        name,
				Price:       price,
				Description: DefaultDescription,
				Category:    DefaultCategory,
				InStock:     true,
			})
		}
	}

	return products
}
