package domain

// Assess runs the full metric pipeline over one hourly series: schema and
// order checks, hourly enrichment, daily aggregation, compound
// classification and risk assignment. It keeps no state between calls, so
// independent series may be assessed concurrently.
//
// An empty series yields an assessment with no days and no error.
func Assess(s Series, th Thresholds) (Assessment, error) {
	if err := CheckSchema(s.Columns); err != nil {
		return Assessment{}, err
	}
	if err := CheckOrder(s.Hours); err != nil {
		return Assessment{}, err
	}

	hours := EnrichHours(s.Hours, th)
	days := Aggregate(hours, th)
	ClassifyCompound(days, th)
	AssignRisk(days, th)

	return Assessment{
		Name:       s.Name,
		Thresholds: th,
		Hours:      hours,
		Days:       days,
	}, nil
}
