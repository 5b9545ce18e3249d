package logging

import "strings"

// FormatSubject builds the job/list subject string used in console output.
func FormatSubject(job, list string) string {
	job = strings.TrimSpace(job)
	list = strings.TrimSpace(list)
	switch {
	case job != "" && list != "":
		return job + " · " + list
	case job != "":
		return job
	default:
		return list
	}
}
