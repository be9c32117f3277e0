package bot

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Layered date parsing: explicit calendar formats first, natural language
// ("tomorrow", "next friday") second.

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01-02",
	"1/2",
}

var nlParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate resolves a due-date expression to a calendar date (midnight in
// now's location). Month-day layouts without a year resolve into now's year.
func ParseDate(s string, now time.Time) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		year := t.Year()
		if year == 0 {
			year = now.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	r, err := nlParser.Parse(s, now)
	if err == nil && r != nil {
		t := r.Time
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	return time.Time{}, fmt.Errorf("cannot parse date: %q", s)
}
