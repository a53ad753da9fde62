package model

import (
	"cmp"
	"slices"
)

// Operation одна из трёх асинхронных операций клиента
type Operation string

const (
	OpShorten   Operation = "shorten"
	OpAnalytics Operation = "analytics"
	OpQR        Operation = "qr"
)

// OperationState состояние одной операции: загрузка, результат, ошибка.
// Отсутствующий результат — nil, отсутствующая ошибка — пустая строка.
type OperationState[T any] struct {
	Loading bool   `json:"loading"`
	Result  *T     `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// State состояние всех трёх операций
type State struct {
	Shorten   OperationState[ShortenResult]   `json:"shorten"`
	Analytics OperationState[AnalyticsResult] `json:"analytics"`
	QR        OperationState[QRImage]         `json:"qr"`
}

// Clone делает глубокую копию, чтобы наблюдатели не видели дальнейших изменений
func (s State) Clone() State {
	if s.Shorten.Result != nil {
		r := *s.Shorten.Result
		s.Shorten.Result = &r
	}
	if s.Analytics.Result != nil {
		r := s.Analytics.Result.Clone()
		s.Analytics.Result = &r
	}
	if s.QR.Result != nil {
		r := *s.QR.Result
		r.Data = slices.Clone(r.Data)
		s.QR.Result = &r
	}
	return s
}

// Snapshot состояние вместе с производными представлениями
type Snapshot struct {
	State
	CountryStats []CountryStat `json:"country_stats"`
	ShortLink    *ShortLink    `json:"short_link,omitempty"`
}

// CountryStats раскладывает переходы по странам по убыванию,
// при равенстве — по коду страны.
func CountryStats(a *AnalyticsResult) []CountryStat {
	if a == nil {
		return []CountryStat{}
	}

	stats := make([]CountryStat, 0, len(a.ClicksByCountry))
	for country, clicks := range a.ClicksByCountry {
		stats = append(stats, CountryStat{Country: country, Clicks: clicks})
	}

	slices.SortFunc(stats, func(x, y CountryStat) int {
		if c := cmp.Compare(y.Clicks, x.Clicks); c != 0 {
			return c
		}
		return cmp.Compare(x.Country, y.Country)
	})
	return stats
}
