package model_selection

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// ReadFoldFile reads one sample index per line from r. The index is the
// first column, separated by whitespace, ',' or ';'. Blank lines and lines
// starting with '#' are skipped.
func ReadFoldFile(r io.Reader) ([]int, error) {
	var rows []int
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, isColumnSeparator)
		if len(fields) == 0 {
			return nil, errors.NewValueError("ReadFoldFile", fmt.Sprintf("line %d: no index column", line))
		}
		first := fields[0]
		idx, err := strconv.Atoi(first)
		if err != nil {
			return nil, errors.NewValueError("ReadFoldFile",
				fmt.Sprintf("line %d: first column %q is not an integer", line, first))
		}
		rows = append(rows, idx)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read fold file")
	}
	return rows, nil
}

func isColumnSeparator(r rune) bool {
	return r == ',' || r == ';' || r == ' ' || r == '\t'
}

// LoadFoldFile reads the fold file at path and returns it as a single-fold
// assignment.
func LoadFoldFile(path string) (FoldAssignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open fold file %s", path)
	}
	defer f.Close()

	rows, err := ReadFoldFile(f)
	if err != nil {
		return nil, errors.Wrapf(err, "fold file %s", path)
	}
	return PartitionFromFile(rows)
}
