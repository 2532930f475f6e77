package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

func newTestFileRepository(t *testing.T) (*FileRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.txt")
	return NewFileRepository(path, nil), path
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestFileRepositoryLoadMissingFile(t *testing.T) {
	repo, _ := newTestFileRepository(t)

	set, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestFileRepositoryLoadSkipsMalformedLines(t *testing.T) {
	repo, path := newTestFileRepository(t)
	mustWrite(t, path, "badline\nrent|1200\n")

	set, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := core.ExpenseSet{"rent": decimal.NewFromInt(1200)}
	if !set.Equal(want) {
		t.Fatalf("Load = %v, want %v", set, want)
	}
}

func TestFileRepositoryLoadEdgeCases(t *testing.T) {
	repo, path := newTestFileRepository(t)
	mustWrite(t, path, strings.Join([]string{
		"",
		"a|b|c",
		"gym|abc",
		"phone| 20.5 ",
		"windows|9.99\r",
		"|3",
		"rent|1000",
		"rent|1200",
	}, "\n"))

	set, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := core.ExpenseSet{
		"phone":   decimal.RequireFromString("20.5"),
		"windows": decimal.RequireFromString("9.99"),
		"":        decimal.NewFromInt(3),
		"rent":    decimal.NewFromInt(1200),
	}
	if !set.Equal(want) {
		t.Fatalf("Load = %v, want %v", set, want)
	}
}

func TestFileRepositoryLoadLongLines(t *testing.T) {
	repo, path := newTestFileRepository(t)
	longName := strings.Repeat("x", 70000)
	longJunk := strings.Repeat("y", 70000)
	mustWrite(t, path, "rent|1200\n"+longName+"|5\n"+longJunk+"\ngym|30\n")

	set, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := core.ExpenseSet{
		"rent":   decimal.NewFromInt(1200),
		longName: decimal.NewFromInt(5),
		"gym":    decimal.NewFromInt(30),
	}
	if !set.Equal(want) {
		t.Fatalf("Load returned %d entries, want %d", len(set), len(want))
	}
}

func TestFileRepositorySaveFormat(t *testing.T) {
	repo, path := newTestFileRepository(t)
	set := core.ExpenseSet{
		"rent":   decimal.NewFromInt(1200),
		"gym":    decimal.RequireFromString("12.50"),
		"refund": decimal.RequireFromString("-3.25"),
	}

	if err := repo.Save(context.Background(), set); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := "gym|12.5\nrefund|-3.25\nrent|1200\n"
	if got := mustRead(t, path); got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()
	set := core.ExpenseSet{
		"rent":       decimal.NewFromInt(1200),
		"gym, pool":  decimal.RequireFromString("30.10"),
		"streaming":  decimal.RequireFromString("0.99"),
		"adjustment": decimal.RequireFromString("-5"),
	}

	if err := repo.Save(ctx, set); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	first := mustRead(t, path)

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Equal(set) {
		t.Fatalf("Load = %v, want %v", loaded, set)
	}

	if err := repo.Save(ctx, loaded); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if second := mustRead(t, path); second != first {
		t.Fatalf("round trip changed file:\n%q\n%q", first, second)
	}
}

func TestFileRepositorySaveEmptySetTruncates(t *testing.T) {
	repo, path := newTestFileRepository(t)
	mustWrite(t, path, "rent|1200\n")

	if err := repo.Save(context.Background(), core.NewExpenseSet()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := mustRead(t, path); got != "" {
		t.Fatalf("file = %q, want empty", got)
	}
}

func TestFileRepositorySaveFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the backing file makes the final rename fail.
	path := filepath.Join(dir, "expenses.txt")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	repo := NewFileRepository(path, nil)

	err := repo.Save(context.Background(), core.ExpenseSet{"rent": decimal.NewFromInt(1)})
	if err == nil {
		t.Fatalf("expected Save to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "expenses.txt" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp file left behind: %v", names)
	}
}

func TestFileRepositorySaveMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "expenses.txt")
	repo := NewFileRepository(path, nil)

	if err := repo.Save(context.Background(), core.NewExpenseSet()); err == nil {
		t.Fatalf("expected error when directory does not exist")
	}
}
