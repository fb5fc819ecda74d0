package polling

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wahlandcase/sscmpoll/internal/models"
)

// countOffset is where the number starts on a "total-N" line
const countOffset = len("total-")

// DefaultThreshold makes any change trigger a build
const DefaultThreshold = 1.0

// ParseCount reads the change count from a "total-N" line
func ParseCount(line string) (float64, error) {
	if len(line) < countOffset {
		return 0, fmt.Errorf("count line %q is too short", line)
	}
	num := strings.TrimSpace(line[countOffset:])
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid change count %q: %w", num, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid change count %q", num)
	}
	return v, nil
}

// firstLine returns the first line of r without its line ending.
// ok is false when r is empty.
func firstLine(r io.Reader) (line string, ok bool, err error) {
	line, err = bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if line == "" {
		return "", false, nil
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// Classify maps a change count onto a verdict: zero is NoChanges, below
// threshold is Significant, and threshold or more is BuildNow.
func Classify(count, threshold float64) models.Verdict {
	switch {
	case count <= 0:
		return models.NoChanges
	case count < threshold:
		return models.Significant
	default:
		return models.BuildNow
	}
}
