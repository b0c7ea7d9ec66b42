package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/sirupsen/logrus"
)

// Structural selectors for the retailer's listing table. Changing markup
// upstream surfaces as a structure error, not an empty result.
const (
	listingTableSelector = "#data > table.table"
	listingRowSelector   = "tbody > tr"
	listingCellSelector  = "td"
	listingLinkSelector  = "a"
)

// ListingExtractor turns raw page markup into typed listings. It is
// stateless: identical markup always yields identical listings.
type ListingExtractor struct {
	classifier *StatusClassifier
	parser     *PriceParser
}

// NewListingExtractor creates an extractor using the given classifier and
// price parser.
func NewListingExtractor(classifier *StatusClassifier, parser *PriceParser) *ListingExtractor {
	return &ListingExtractor{classifier: classifier, parser: parser}
}

// Extract walks the listing table rows of a retailer page and produces
// one Listing per usable row. Individual malformed rows are skipped with
// a debug log; only a missing listing table aborts the page, since that
// indicates the upstream layout changed. A present table with zero body
// rows is a legitimate empty result.
func (e *ListingExtractor) Extract(pageMarkup string) ([]models.Listing, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(pageMarkup))
	if err != nil {
		return nil, shared.NewStructureError("UNPARSABLE_MARKUP", "page markup could not be parsed as HTML", "Extract")
	}

	table := document.Find(listingTableSelector).First()
	if table.Length() == 0 {
		return nil, shared.NewStructureError(
			"TABLE_NOT_FOUND",
			"listing table not found with selector '"+listingTableSelector+"'; the page structure might have changed",
			"Extract",
		)
	}

	listings := make([]models.Listing, 0)
	skippedRows := 0

	table.Find(listingRowSelector).Each(func(rowIndex int, row *goquery.Selection) {
		cells := row.Find(listingCellSelector)

		// eBay marketplace rows are a two-cell special case: a link cell
		// and a status cell, no price or last-available columns.
		if cells.Length() == 2 {
			if listing, ok := e.extractEbayRow(cells); ok {
				listings = append(listings, listing)
				return
			}
		}

		if cells.Length() < 4 {
			skippedRows++
			logrus.WithFields(logrus.Fields{
				"row":   rowIndex,
				"cells": cells.Length(),
			}).Debug("Skipping incomplete listing row")
			return
		}

		listing := e.extractStandardRow(cells)
		if listing.Name == "" {
			skippedRows++
			logrus.WithField("row", rowIndex).Debug("Skipping listing row without a product name")
			return
		}
		listings = append(listings, listing)
	})

	if skippedRows > 0 {
		logrus.WithFields(logrus.Fields{
			"extracted": len(listings),
			"skipped":   skippedRows,
		}).Debug("Listing extraction skipped rows")
	}

	return listings, nil
}

// extractEbayRow handles the retailer's two-cell eBay rows. Only rows
// whose link text mentions eBay qualify; anything else falls through to
// standard handling.
func (e *ListingExtractor) extractEbayRow(cells *goquery.Selection) (models.Listing, bool) {
	link := cells.Eq(0).Find(listingLinkSelector).First()
	name := normalizeCellText(link.Text())
	if !strings.Contains(strings.ToLower(name), "ebay") {
		return models.Listing{}, false
	}

	href, _ := link.Attr("href")
	statusLabel := normalizeCellText(cells.Eq(1).Text())

	return models.Listing{
		Name:          name,
		Status:        e.classifier.Classify(name + " " + statusLabel),
		StatusLabel:   statusLabel,
		PriceText:     "-",
		PriceValue:    nil,
		LastAvailable: "-",
		Link:          href,
	}, true
}

// extractStandardRow reads the fixed four-cell layout: name+link, status,
// price, last-available. Unparsable fields degrade to placeholders rather
// than aborting the row.
func (e *ListingExtractor) extractStandardRow(cells *goquery.Selection) models.Listing {
	var name, href string
	if link := cells.Eq(0).Find(listingLinkSelector).First(); link.Length() > 0 {
		name = normalizeCellText(link.Text())
		href, _ = link.Attr("href")
	}

	statusCell := cells.Eq(1)
	statusLabel := ""
	if statusLink := statusCell.Find(listingLinkSelector).First(); statusLink.Length() > 0 {
		statusLabel = normalizeCellText(statusLink.Text())
	} else {
		statusLabel = normalizeCellText(statusCell.Text())
	}

	priceText := normalizeCellText(cells.Eq(2).Text())
	if priceText == "" {
		priceText = "-"
	}

	// The cell text shows a relative time; the title attribute carries
	// the full timestamp when present.
	lastCell := cells.Eq(3)
	lastAvailable := normalizeCellText(lastCell.Text())
	if title, exists := lastCell.Attr("title"); exists && strings.TrimSpace(title) != "" {
		lastAvailable = strings.TrimSpace(title)
	}
	if lastAvailable == "" {
		lastAvailable = "-"
	}

	return models.Listing{
		Name:          name,
		Status:        e.classifier.Classify(statusLabel),
		StatusLabel:   statusLabel,
		PriceText:     priceText,
		PriceValue:    e.parser.Parse(priceText),
		LastAvailable: lastAvailable,
		Link:          href,
	}
}

// normalizeCellText collapses the whitespace runs goquery leaves behind
// when an element has nested children.
func normalizeCellText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
