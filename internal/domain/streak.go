package domain

// Streaks returns, for each position, how many consecutive entries ending
// there are true. A false entry resets the count to zero.
//
//	[T T F T T T] -> [1 2 0 1 2 3]
func Streaks(flags []bool) []int {
	out := make([]int, len(flags))
	for i, ok := range flags {
		if !ok {
			continue
		}
		if i == 0 {
			out[i] = 1
			continue
		}
		out[i] = out[i-1] + 1
	}
	return out
}

// streaksOf applies Streaks to one boolean field of the daily records. Days
// missing from the series break a run: the streak restarts on the first day
// after a calendar gap.
func streaksOf(days []DailyRecord, flag func(DailyRecord) bool) []int {
	out := make([]int, 0, len(days))
	for start := 0; start < len(days); {
		end := start + 1
		for end < len(days) && days[end-1].Date.Next() == days[end].Date {
			end++
		}
		flags := make([]bool, end-start)
		for i, d := range days[start:end] {
			flags[i] = flag(d)
		}
		out = append(out, Streaks(flags)...)
		start = end
	}
	return out
}
