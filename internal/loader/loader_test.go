package loader

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/goleak"

	"github.com/pable/go-defense-metrics/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNorm = Normalization{
	IDColumns:     []string{"SeasonKey", "GameKey", "PlayerKey", "DPlayerKey"},
	StringColumns: []string{"firstName", "lastName", "OTeamAbbrev", "DTeamAbbrev", "game_date"},
}

const sampleCSV = `SeasonKey,GameKey,PlayerKey,firstName,lastName,game_date,OTeamAbbrev,DTeamAbbrev,drive_label,firstName
2024,101,7, Ann ,Lee ,2024-01-05, bos ,NYK,good,dup
2024,abc,7.0,Bob,Ray,2024-01-06,MIA, NYK ,bad,dup
,102.5,,Cy,Dee,,LAL,CHI, neutral ,dup
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func mustColumn(t *testing.T, tbl *Table, name string) *Column {
	t.Helper()
	c, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %q missing", name)
	}
	return c
}

func TestRead_Normalizes(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleCSV), testNorm)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Rows != 3 {
		t.Fatalf("rows: want 3, got %d", tbl.Rows)
	}

	// Duplicate header keeps the first occurrence only.
	wantNames := []string{"SeasonKey", "GameKey", "PlayerKey", "firstName", "lastName", "game_date", "OTeamAbbrev", "DTeamAbbrev", "drive_label"}
	if diff := cmp.Diff(wantNames, tbl.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	game := mustColumn(t, tbl, "GameKey")
	if game.Kind != KindID {
		t.Errorf("GameKey kind: want KindID, got %v", game.Kind)
	}
	wantGame := []model.NullInt{model.IntOf(101), {}, {}}
	if diff := cmp.Diff(wantGame, game.Ints); diff != "" {
		t.Errorf("GameKey ints (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"101", "", ""}, game.Text); diff != "" {
		t.Errorf("GameKey text (-want +got):\n%s", diff)
	}

	player := mustColumn(t, tbl, "PlayerKey")
	if diff := cmp.Diff([]model.NullInt{model.IntOf(7), model.IntOf(7), {}}, player.Ints); diff != "" {
		t.Errorf("PlayerKey ints (-want +got):\n%s", diff)
	}

	first := mustColumn(t, tbl, "firstName")
	if diff := cmp.Diff([]string{"Ann", "Bob", "Cy"}, first.Text); diff != "" {
		t.Errorf("firstName (-want +got):\n%s", diff)
	}
	opp := mustColumn(t, tbl, "OTeamAbbrev")
	if opp.Text[0] != "bos" {
		t.Errorf("OTeamAbbrev should be trimmed but keep case, got %q", opp.Text[0])
	}

	// Columns outside the fixed sets are untouched.
	label := mustColumn(t, tbl, "drive_label")
	if label.Kind != KindRaw || label.Text[2] != " neutral " {
		t.Errorf("drive_label should be raw, got kind=%v value=%q", label.Kind, label.Text[2])
	}

	// Absent normalization columns are skipped silently.
	if tbl.Has("DPlayerKey") {
		t.Error("DPlayerKey should not exist")
	}
}

func TestRead_EmptyInput(t *testing.T) {
	tbl, err := Read(strings.NewReader(""), testNorm)
	if err != nil {
		t.Fatalf("Read empty: %v", err)
	}
	if tbl.Rows != 0 || len(tbl.Columns) != 0 {
		t.Errorf("want empty table, got rows=%d cols=%d", tbl.Rows, len(tbl.Columns))
	}
}

func TestRead_ShortRowsArePadded(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b,c\n1,2\n"), Normalization{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	c := mustColumn(t, tbl, "c")
	if len(c.Text) != 1 || c.Text[0] != "" {
		t.Errorf("want padded empty cell, got %q", c.Text)
	}
}

func TestParseNullInt(t *testing.T) {
	tests := []struct {
		in   string
		want model.NullInt
	}{
		{"42", model.IntOf(42)},
		{" 42 ", model.IntOf(42)},
		{"42.0", model.IntOf(42)},
		{"-3", model.IntOf(-3)},
		{"42.5", model.NullInt{}},
		{"", model.NullInt{}},
		{"nan", model.NullInt{}},
		{"abc", model.NullInt{}},
		{"1e400", model.NullInt{}},
	}
	for _, tt := range tests {
		if got := ParseNullInt(tt.in); got != tt.want {
			t.Errorf("ParseNullInt(%q): want %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), testNorm)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeFile(t, "iso.csv", []byte(sampleCSV))
	a, err := Load(path, testNorm)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	b, err := Load(path, testNorm)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(Table{})); diff != "" {
		t.Errorf("loads differ (-first +second):\n%s", diff)
	}
}

func TestLoad_Compressed(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(sampleCSV))
	gw.Close()

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	zw.Write([]byte(sampleCSV))
	zw.Close()

	plain, err := Load(writeFile(t, "iso.csv", []byte(sampleCSV)), testNorm)
	if err != nil {
		t.Fatalf("plain Load: %v", err)
	}
	for name, data := range map[string][]byte{"iso.csv.gz": gz.Bytes(), "iso.csv.zst": zs.Bytes()} {
		got, err := Load(writeFile(t, name, data), testNorm)
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		if diff := cmp.Diff(plain.Columns, got.Columns); diff != "" {
			t.Errorf("%s differs from plain (-plain +got):\n%s", name, diff)
		}
	}
}

func TestLoad_CorruptGzip(t *testing.T) {
	_, err := Load(writeFile(t, "bad.csv.gz", []byte("not gzip")), testNorm)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestCache_Memoizes(t *testing.T) {
	path := writeFile(t, "iso.csv", []byte(sampleCSV))
	c := NewCache(testNorm, nil)

	a, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Same source via a non-canonical path.
	b, err := c.Load(filepath.Join(filepath.Dir(path), ".", "iso.csv"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a != b {
		t.Error("expected identical table pointer from cache")
	}
	if c.Misses() != 1 {
		t.Errorf("misses: want 1, got %d", c.Misses())
	}
}

func TestCache_ConcurrentLoadsReadOnce(t *testing.T) {
	path := writeFile(t, "iso.csv", []byte(sampleCSV))
	c := NewCache(testNorm, nil)

	var wg sync.WaitGroup
	tables := make([]*Table, 8)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := c.Load(path)
			if err != nil {
				t.Errorf("Load: %v", err)
				return
			}
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	for _, tbl := range tables {
		if tbl != tables[0] {
			t.Fatal("concurrent loads returned different tables")
		}
	}
	if c.Misses() != 1 {
		t.Errorf("misses: want 1, got %d", c.Misses())
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")
	c := NewCache(testNorm, nil)

	if _, err := c.Load(path); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	tbl, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load after create: %v", err)
	}
	if tbl.Rows != 3 {
		t.Errorf("rows: want 3, got %d", tbl.Rows)
	}
}
