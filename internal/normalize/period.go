package normalize

import "strconv"

// Period renders a subscription duration in months.
func (v Vocabulary) Period(months int) string {
	n := strconv.Itoa(months)
	if v.Locale == LocaleEN {
		if months == 1 {
			return "1 month"
		}
		return n + " months"
	}

	switch {
	case months%100 >= 11 && months%100 <= 14:
		return n + " месяцев"
	case months%10 == 1:
		return n + " месяц"
	case months%10 >= 2 && months%10 <= 4:
		return n + " месяца"
	default:
		return n + " месяцев"
	}
}

func Period(months int) string { return Default.Period(months) }
