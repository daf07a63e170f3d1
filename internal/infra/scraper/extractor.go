package scraper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"class_openings_notifier/internal/domain/slot"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

var errKeywordMissing = errors.New("level keyword not found in class title")

var parenStripper = strings.NewReplacer("(", "", ")", "")

// LevelFilter decides which class types are kept.
type LevelFilter struct {
	Keyword    string // e.g. "Flow"
	Token      string // substring test, "1" keeps "Flow 1" and "Flow 1.5"
	LabelWidth int    // characters taken from the keyword onwards
}

// Label cuts the class-type label out of a class title.
func (f LevelFilter) Label(title string) (string, error) {
	idx := strings.Index(title, f.Keyword)
	if f.Keyword == "" || idx < 0 {
		return "", errKeywordMissing
	}
	runes := []rune(title[idx:])
	if f.LabelWidth > 0 && len(runes) > f.LabelWidth {
		runes = runes[:f.LabelWidth]
	}
	label := strings.TrimSpace(parenStripper.Replace(string(runes)))
	if label == "" {
		return "", fmt.Errorf("empty label in class title %q", title)
	}
	return label, nil
}

func (f LevelFilter) Matches(label string) bool {
	return strings.Contains(label, f.Token)
}

// Extraction is what one day view yields.
type Extraction struct {
	Slots         []slot.ClassSlot
	Invalidations []slot.Invalidation
}

// Extractor turns a rendered day view into class slots.
type Extractor struct {
	selectors Selectors
	filter    LevelFilter
	location  *time.Location
	logger    *logrus.Entry
}

func NewExtractor(selectors Selectors, filter LevelFilter, location *time.Location, logger *logrus.Entry) *Extractor {
	if location == nil {
		location = time.Local
	}
	return &Extractor{
		selectors: selectors,
		filter:    filter,
		location:  location,
		logger:    logger,
	}
}

// ExtractHTML parses html and runs Extract.
func (e *Extractor) ExtractHTML(html, date string, now time.Time) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse day view: %w", err)
	}
	return e.Extract(doc, date, now), nil
}

// DayDate reads the value attribute of the index-th day control.
func (e *Extractor) DayDate(doc *goquery.Document, index int) string {
	return strings.TrimSpace(doc.Find(e.selectors.DayButton).Eq(index).AttrOr("value", ""))
}

// Extract classifies every schedule cell of the day in document order.
// Open cells of the wanted level that are still in the future become slots;
// full, waitlisted and blank cells become invalidations. A malformed cell is
// logged and skipped.
func (e *Extractor) Extract(doc *goquery.Document, date string, now time.Time) Extraction {
	titles := doc.Find(e.selectors.ClassTitle)
	starts := doc.Find(e.selectors.ClassStart)
	statuses := doc.Find(e.selectors.ClassStatus)

	var out Extraction
	statuses.Each(func(i int, status *goquery.Selection) {
		cellLog := e.logger.WithFields(logrus.Fields{"date": date, "cell": i})
		if i >= starts.Length() {
			cellLog.Warn("Schedule cell has no start time, skipping")
			return
		}
		rawTime := strings.TrimSpace(starts.Eq(i).Text())
		statusText := status.Text()

		switch slot.Classify(statusText) {
		case slot.StatusFullOrWaitlisted, slot.StatusEmptyOrUnknown:
			out.Invalidations = append(out.Invalidations, slot.Invalidation{Date: date, RawTime: rawTime})
			return
		}

		if i >= titles.Length() {
			cellLog.Warn("Schedule cell has no class title, skipping")
			return
		}
		title := titles.Eq(i).Text()
		label, err := e.filter.Label(title)
		if err != nil {
			cellLog.WithError(err).WithField("title", strings.TrimSpace(title)).Warn("Could not read class level, skipping")
			return
		}
		if !e.filter.Matches(label) {
			return
		}

		startTime, err := slot.To24Hour(rawTime)
		if err != nil {
			cellLog.WithError(err).Warn("Could not parse class start time, skipping")
			return
		}

		s := slot.ClassSlot{
			Date:      date,
			Time:      startTime,
			Level:     label,
			OpenSpots: strings.TrimSpace(statusText),
		}
		instant, err := s.Instant(e.location)
		if err != nil {
			cellLog.WithError(err).Warn("Invalid class date, skipping")
			return
		}
		if !instant.After(now) {
			cellLog.WithField("time", startTime).Debug("Class already started, dropping")
			return
		}
		out.Slots = append(out.Slots, s)
	})
	return out
}
