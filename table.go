package clustergen

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Column names read from the interpretation table
const (
	FieldCluster       = "cluster"
	FieldMotion        = "motion_mean"
	FieldCutRate       = "cut_rate_per_min"
	FieldAudioRMSMean  = "audio_rms_mean"
	FieldAudioRMSStd   = "audio_rms_std"
	FieldVisualDensity = "visual_density"
	FieldDuration      = "duration"
)

var (
	ErrMalformedTable       = errors.New("malformed table")
	ErrMissingClusterColumn = errors.New("table has no cluster column")
)

// Value is one parsed cell. Numeric-looking cells carry their number.
type Value struct {
	Raw     string
	Number  float64
	Numeric bool
}

func parseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{Raw: raw}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Raw: raw}
	}
	return Value{Raw: raw, Number: f, Numeric: true}
}

// IsEmpty reports whether the cell was blank
func (v Value) IsEmpty() bool {
	return strings.TrimSpace(v.Raw) == ""
}

// MarshalJSON writes numbers as numbers, blanks as null and everything else as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.Numeric:
		return json.Marshal(v.Number)
	case v.IsEmpty():
		return []byte("null"), nil
	default:
		return json.Marshal(v.Raw)
	}
}

// VideoRecord is one row of the interpretation table keyed by column name
type VideoRecord map[string]Value

// Float returns the numeric value of field, or 0 when it is missing or not a number
func (r VideoRecord) Float(field string) float64 {
	v, ok := r[field]
	if !ok || !v.Numeric {
		return 0
	}
	return v.Number
}

// Has reports whether field holds a number
func (r VideoRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && v.Numeric
}

// ClusterID returns the row's cluster identifier. ok is false for a blank cell.
func (r VideoRecord) ClusterID() (ClusterID, bool) {
	v, exists := r[FieldCluster]
	if !exists {
		return ClusterID{}, false
	}
	return clusterIDFromValue(v)
}

// RecordTable is a parsed, header-based table
type RecordTable struct {
	Name    string
	Columns []string
	Rows    []VideoRecord
}

// HasColumn reports whether the header contains name
func (t *RecordTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// LoadTable reads and parses a CSV file
func LoadTable(path string) (*RecordTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close table file", zap.String("path", path), zap.Error(err))
		}
	}()

	table, err := ParseTable(filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return table, nil
}

// ParseTable parses CSV data with a header row. Numeric-looking cells are coerced to numbers.
func ParseTable(name string, r io.Reader) (*RecordTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedTable)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrMalformedTable, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", ErrMalformedTable, i+1)
		}
	}

	table := &RecordTable{Name: name, Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		row := make(VideoRecord, len(columns))
		for i, col := range columns {
			row[col] = parseValue(record[i])
		}
		table.Rows = append(table.Rows, row)
	}

	logger.Debug("📄 Parsed table",
		zap.String("table", name),
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(table.Rows)))
	return table, nil
}

// detectDelimiter picks the most frequent of ',', ';' and tab on the first line
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// ClusterID identifies a cluster. Numeric-looking ids compare as numbers; anything else
// falls back to string identity and sorts after every numeric id.
type ClusterID struct {
	num     float64
	str     string
	numeric bool
}

// NumericClusterID returns an id for a numeric cluster label
func NumericClusterID(n float64) ClusterID {
	return ClusterID{num: n, numeric: true}
}

// StringClusterID returns an id for a non-numeric cluster label
func StringClusterID(s string) ClusterID {
	return ClusterID{str: s}
}

// ParseClusterID coerces raw into an id. ok is false when raw is blank.
func ParseClusterID(raw string) (ClusterID, bool) {
	return clusterIDFromValue(parseValue(raw))
}

func clusterIDFromValue(v Value) (ClusterID, bool) {
	if v.Numeric {
		return NumericClusterID(v.Number), true
	}
	s := strings.TrimSpace(v.Raw)
	if s == "" {
		return ClusterID{}, false
	}
	return StringClusterID(s), true
}

// IsNumeric reports whether the id is numeric
func (id ClusterID) IsNumeric() bool {
	return id.numeric
}

func (id ClusterID) String() string {
	if id.numeric {
		return strconv.FormatFloat(id.num, 'f', -1, 64)
	}
	return id.str
}

// Compare orders numeric ids numerically, then string ids lexically
func (id ClusterID) Compare(other ClusterID) int {
	switch {
	case id.numeric && other.numeric:
		switch {
		case id.num < other.num:
			return -1
		case id.num > other.num:
			return 1
		}
		return 0
	case id.numeric:
		return -1
	case other.numeric:
		return 1
	}
	return strings.Compare(id.str, other.str)
}

// Less reports whether id sorts before other
func (id ClusterID) Less(other ClusterID) bool {
	return id.Compare(other) < 0
}

// MarshalText renders the id as used for JSON object keys
func (id ClusterID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses an id from its text form
func (id *ClusterID) UnmarshalText(text []byte) error {
	parsed, ok := ParseClusterID(string(text))
	if !ok {
		return fmt.Errorf("empty cluster id")
	}
	*id = parsed
	return nil
}

// MarshalJSON writes numeric ids as numbers and the rest as strings
func (id ClusterID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return json.Marshal(id.num)
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON accepts a number or a string
func (id *ClusterID) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = NumericClusterID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cluster id must be a number or string: %w", err)
	}
	return id.UnmarshalText([]byte(s))
}
