package simulation

// Summary condenses a run history into headline numbers
type Summary struct {
	Days             int
	Total            int
	PeakInfected     int
	PeakDay          int
	EverInfected     int
	Deceased         int
	AttackRate       float64
	CaseFatalityRate float64
}

// Summarize computes headline numbers from a history. The last time point is
// taken as the final state.
func Summarize(points []TimePoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	summary := Summary{}
	for _, tp := range points {
		if tp.Infected > summary.PeakInfected {
			summary.PeakInfected = tp.Infected
			summary.PeakDay = tp.Day
		}
	}

	final := points[len(points)-1]
	summary.Days = final.Day
	summary.Total = final.Total
	summary.Deceased = final.Deceased
	summary.EverInfected = final.Total - final.Susceptible

	if summary.Total > 0 {
		summary.AttackRate = float64(summary.EverInfected) / float64(summary.Total)
	}
	resolved := final.Recovered + final.Deceased
	if resolved > 0 {
		summary.CaseFatalityRate = float64(final.Deceased) / float64(resolved)
	}
	return summary
}
