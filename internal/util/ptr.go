package util

func StringPtr(v string) *string {
	return &v
}

func FloatPtr(v float64) *float64 {
	return &v
}

func IntPtr(v int) *int {
	return &v
}
