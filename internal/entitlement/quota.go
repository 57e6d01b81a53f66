package entitlement

// tier maps an inclusive range of remaining days to a daily click cap.
// MaxDays == 0 means open-ended.
type tier struct {
	MinDays int
	MaxDays int
	Clicks  int
}

var clickTiers = []tier{
	{MinDays: 1, MaxDays: 30, Clicks: 5},
	{MinDays: 31, MaxDays: 60, Clicks: 20},
	{MinDays: 61, MaxDays: 90, Clicks: 30},
	{MinDays: 91, MaxDays: 0, Clicks: 40},
}

// MaxDailyClicks returns the insights click cap for the given entitlement.
// nil means unlimited.
func MaxDailyClicks(remainingDays *int, lifetime bool) *int {
	if lifetime {
		return nil
	}
	if remainingDays == nil || *remainingDays <= 0 {
		return intPtr(0)
	}
	d := *remainingDays
	for _, t := range clickTiers {
		if d >= t.MinDays && (t.MaxDays == 0 || d <= t.MaxDays) {
			return intPtr(t.Clicks)
		}
	}
	return intPtr(0)
}
