package services

// ToDecimalDegrees converts a degrees/minutes/seconds triple into signed
// decimal degrees. Southern and western references are negative. The input is
// not validated; callers run IsComplete first.
func ToDecimalDegrees(dms [3]float64, ref string) float64 {
	dd := dms[0] + dms[1]/60 + dms[2]/3600
	if ref == "S" || ref == "W" {
		return -dd
	}
	return dd
}
