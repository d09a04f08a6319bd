package service

import (
	"time"
)

// AgeOn returns the age in whole years of someone born on dob, as of today.
// The birthday counts only once its month and day have been reached this year.
func AgeOn(dob, today time.Time) int {
	age := today.Year() - dob.Year()

	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}

	return age
}
