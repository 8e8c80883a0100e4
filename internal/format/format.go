// Package format renders dates, month labels, and currency amounts in the
// dashboard's two display locales.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// englishMonths and arabicMonths index Gregorian months 1 through 12.
var englishMonths = [13]string{"",
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var arabicMonths = [13]string{"",
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Formatter renders values for one display language.
type Formatter struct {
	lang    string
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
}

// New creates a formatter for "en" or "ar". English amounts render in USD,
// Arabic in SAR. Any other language falls back to English.
func New(lang string) *Formatter {
	switch lang {
	case "ar":
		return &Formatter{
			lang:    "ar",
			tag:     language.MustParse("ar-SA"),
			unit:    currency.MustParseISO("SAR"),
			printer: message.NewPrinter(language.MustParse("ar-SA")),
		}
	default:
		return &Formatter{
			lang:    "en",
			tag:     language.MustParse("en-US"),
			unit:    currency.USD,
			printer: message.NewPrinter(language.MustParse("en-US")),
		}
	}
}

// Date renders a calendar day, e.g. "June 12, 2025" or "12 يونيو 2025".
func (f *Formatter) Date(t time.Time) string {
	if f.lang == "ar" {
		return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()], t.Year())
	}
	return fmt.Sprintf("%s %d, %d", englishMonths[t.Month()], t.Day(), t.Year())
}

// DateTime renders a day with a 24-hour clock time.
func (f *Formatter) DateTime(t time.Time) string {
	return fmt.Sprintf("%s %02d:%02d", f.Date(t), t.Hour(), t.Minute())
}

// Currency renders an amount in cents with the locale's currency symbol and
// digit grouping.
func (f *Formatter) Currency(cents int64) string {
	amount := f.unit.Amount(float64(cents) / 100)
	return f.printer.Sprintf("%v", currency.Symbol(amount))
}

// MonthLabel renders a "YYYY-MM" key as a human month label, e.g.
// "June 2025" or "يونيو 2025". Invalid keys are returned unchanged.
func (f *Formatter) MonthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	if f.lang == "ar" {
		return fmt.Sprintf("%s %d", arabicMonths[t.Month()], t.Year())
	}
	return fmt.Sprintf("%s %d", englishMonths[t.Month()], t.Year())
}
