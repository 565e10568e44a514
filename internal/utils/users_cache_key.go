package utils

import "strconv"

func BuildUsersListCacheKey(page, limit int) string {
	return "users:list:v1:page=" + strconv.Itoa(page) +
		":limit=" + strconv.Itoa(limit)
}
