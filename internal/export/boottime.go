package export

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SystemBootTime reads the boot time from /proc/stat, the anchor for
// converting trace timestamps to wall-clock time. If reading fails, a
// conservative estimate is returned so replay can continue.
func SystemBootTime() time.Time {
	bootTime, err := readBootTime()
	if err != nil {
		return time.Now().Add(-time.Hour)
	}
	return bootTime
}

func readBootTime() (time.Time, error) {
	file, err := os.Open("/proc/stat")
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open /proc/stat: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "btime ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		sec, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse btime: %w", err)
		}
		return time.Unix(sec, 0), nil
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, fmt.Errorf("error reading /proc/stat: %w", err)
	}
	return time.Time{}, fmt.Errorf("btime not found in /proc/stat")
}
