package clustergen

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func mustParseTable(t *testing.T, data string) *RecordTable {
	t.Helper()
	table, err := ParseTable("test.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	return table
}

func TestParseTable(t *testing.T) {
	table := mustParseTable(t, "cluster,motion_mean,cut_rate_per_min,video_id\n"+
		"1,0.25,42,abc\n"+
		"2,n/a,,def\n")

	if got, want := len(table.Rows), 2; got != want {
		t.Fatalf("rows: got %d, want %d", got, want)
	}
	if !table.HasColumn(FieldCluster) {
		t.Error("expected cluster column")
	}

	first := table.Rows[0]
	if got := first.Float(FieldMotion); got != 0.25 {
		t.Errorf("motion: got %v, want 0.25", got)
	}
	if got := first.Float(FieldCutRate); got != 42 {
		t.Errorf("cut rate: got %v, want 42", got)
	}
	if first["video_id"].Numeric {
		t.Error("video_id should stay a string")
	}

	second := table.Rows[1]
	if second.Has(FieldMotion) {
		t.Error("non-numeric motion should not count as present")
	}
	if got := second.Float(FieldMotion); got != 0 {
		t.Errorf("non-numeric motion: got %v, want 0", got)
	}
	if !second[FieldCutRate].IsEmpty() {
		t.Error("blank cut rate should be empty")
	}
	if got := second.Float(FieldAudioRMSMean); got != 0 {
		t.Errorf("absent column: got %v, want 0", got)
	}
}

func TestParseTableDelimiters(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"semicolon", "cluster;motion_mean\n1;0.5\n"},
		{"tab", "cluster\tmotion_mean\n1\t0.5\n"},
		{"bom", "\xef\xbb\xbfcluster,motion_mean\n1,0.5\n"},
		{"crlf", "cluster,motion_mean\r\n1,0.5\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustParseTable(t, tt.data)
			if !table.HasColumn(FieldCluster) {
				t.Fatalf("columns: got %v, want cluster", table.Columns)
			}
			if got := table.Rows[0].Float(FieldMotion); got != 0.5 {
				t.Errorf("motion: got %v, want 0.5", got)
			}
		})
	}
}

func TestParseTableMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "  \n\n"},
		{"ragged", "cluster,motion_mean\n1,0.5,extra\n"},
		{"empty header", "cluster,,motion_mean\n1,2,3\n"},
		{"unterminated quote", "cluster,motion_mean\n\"1,0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable("bad.csv", strings.NewReader(tt.data))
			if !errors.Is(err, ErrMalformedTable) {
				t.Errorf("got %v, want ErrMalformedTable", err)
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interpretation.csv")
	if err := os.WriteFile(path, []byte("cluster,motion_mean\n0,0.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if table.Name != "interpretation.csv" {
		t.Errorf("name: got %q, want %q", table.Name, "interpretation.csv")
	}

	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestParseClusterID(t *testing.T) {
	one, ok := ParseClusterID("1")
	if !ok || !one.IsNumeric() {
		t.Fatalf("ParseClusterID(\"1\") = %v, %v", one, ok)
	}
	oneFloat, _ := ParseClusterID(" 1.0 ")
	if one != oneFloat {
		t.Errorf("1 and 1.0 should be the same cluster")
	}
	if got := oneFloat.String(); got != "1" {
		t.Errorf("String(): got %q, want %q", got, "1")
	}

	named, ok := ParseClusterID("outliers")
	if !ok || named.IsNumeric() {
		t.Fatalf("ParseClusterID(\"outliers\") = %v, %v", named, ok)
	}

	if _, ok := ParseClusterID("   "); ok {
		t.Error("blank id should not parse")
	}
}

func TestClusterIDOrdering(t *testing.T) {
	ids := []ClusterID{
		StringClusterID("b"),
		NumericClusterID(10),
		StringClusterID("a"),
		NumericClusterID(2),
		NumericClusterID(-1),
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var got []string
	for _, id := range ids {
		got = append(got, id.String())
	}
	want := "-1,2,10,a,b"
	if strings.Join(got, ",") != want {
		t.Errorf("got %s, want %s", strings.Join(got, ","), want)
	}
}

func TestClusterIDJSON(t *testing.T) {
	data, err := json.Marshal([]ClusterID{NumericClusterID(3), StringClusterID("x")})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `[3,"x"]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var decoded []ClusterID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded[0] != NumericClusterID(3) || decoded[1] != StringClusterID("x") {
		t.Errorf("got %v, want [3 x]", decoded)
	}

	keyed, err := json.Marshal(map[ClusterID]int{NumericClusterID(1): 1})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(keyed), `{"1":1}`; got != want {
		t.Errorf("map keys: got %s, want %s", got, want)
	}
}

func TestValueMarshalJSON(t *testing.T) {
	row := VideoRecord{
		"n": parseValue("1.5"),
		"s": parseValue("clip"),
		"e": parseValue(""),
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"e":null,"n":1.5,"s":"clip"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
