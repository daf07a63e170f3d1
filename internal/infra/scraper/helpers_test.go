package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type cell struct {
	title  string
	start  string
	status string
}

// dayPage renders a week view with the given day controls and the class
// cells of the selected day.
func dayPage(dates []string, cells ...cell) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="location-scheduler__days">`)
	for _, d := range dates {
		fmt.Fprintf(&b, `<button class="location-scheduler__day" value="%s">%s</button>`, d, d)
	}
	b.WriteString(`</div><div class="location-scheduler__classes">`)
	for _, c := range cells {
		fmt.Fprintf(&b, `<div class="location-scheduler__class">`+
			`<div class="location-scheduler__class-title">%s</div>`+
			`<div class="location-scheduler__class-start">%s</div>`+
			`<div class="location-scheduler__class-status">%s</div>`+
			`</div>`, c.title, c.start, c.status)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func goqueryDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
