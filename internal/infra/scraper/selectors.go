package scraper

// Selectors are the CSS selectors of the location schedule page.
type Selectors struct {
	CookieDecline string
	NextWeek      string
	Calendar      string
	DayButton     string
	ClassTitle    string
	ClassStart    string
	ClassStatus   string
}

func DefaultSelectors() Selectors {
	return Selectors{
		CookieDecline: "#hs-eu-decline-button",
		NextWeek:      ".location-scheduler__next",
		Calendar:      ".location-scheduler__days",
		DayButton:     "button.location-scheduler__day",
		ClassTitle:    "div.location-scheduler__class-title",
		ClassStart:    "div.location-scheduler__class-start",
		ClassStatus:   "div.location-scheduler__class-status",
	}
}
