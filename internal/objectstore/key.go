package objectstore

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// PartitionKey formats a date-partitioned object key:
//
//	{prefix}/year=YYYY/month=MM/day=DD/{filename}
//
// Pure function, no I/O. Month and day are zero-padded so keys sort
// lexicographically by date.
func PartitionKey(prefix string, date time.Time, filename string) string {
	return fmt.Sprintf("%s/year=%04d/month=%02d/day=%02d/%s",
		strings.TrimRight(prefix, "/"), date.Year(), int(date.Month()), date.Day(),
		path.Base(filename))
}
