package dashboard

import (
	"sort"
	"strings"

	"expensedesk/internal/client"
	"expensedesk/internal/format"
)

// ApplyFilters returns the reports matching both filters. An empty employee
// or month means that predicate always passes, so two empty filters return
// the input unchanged in order.
func ApplyFilters(reports []client.Report, employee, month string) []client.Report {
	out := make([]client.Report, 0, len(reports))
	for _, r := range reports {
		if employee != "" && r.User != employee {
			continue
		}
		if month != "" && !strings.HasPrefix(r.Date, month) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MonthOption is one entry of the month filter dropdown.
type MonthOption struct {
	Key   string // YYYY-MM
	Label string // locale month label
}

// MonthOptions derives the month dropdown from the reports on hand: the
// deduplicated YYYY-MM prefixes of their dates, sorted ascending, labeled
// for the given language.
func MonthOptions(reports []client.Report, lang string) []MonthOption {
	seen := map[string]bool{}
	keys := []string{}
	for _, r := range reports {
		if len(r.Date) < 7 {
			continue
		}
		key := r.Date[:7]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	f := format.New(lang)
	options := make([]MonthOption, len(keys))
	for i, key := range keys {
		options[i] = MonthOption{Key: key, Label: f.MonthLabel(key)}
	}
	return options
}

// EmployeeNames derives the employee dropdown entries from the user list,
// in source order.
func EmployeeNames(users []client.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return names
}
