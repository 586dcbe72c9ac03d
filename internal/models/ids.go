package models

import "strconv"

func uintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func stringToUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
