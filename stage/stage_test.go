package stage

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
)

func collect[T any](t *testing.T, p *pipeline.Pipeline[T]) []T {
	t.Helper()
	got, err := pipeline.Collect(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got
}

var sampleLines = []string{
	"GET /index.html\n",
	"POST /login\n",
	"GET /favicon.ico\n",
	"HEAD /\n",
	"GET /login\n",
}

func TestOnce(t *testing.T) {
	number := func(s string) (int, bool) {
		n, ok := map[string]int{"one": 1, "two": 2}[s]
		return n, ok
	}
	length := func(s string) (int, bool) {
		if s == "" {
			return 0, false
		}
		return len(s), true
	}
	got := collect(t, Once(pipeline.Of("one", "three", "", "two"), number, length))
	if !slices.Equal(got, []int{1, 5, 2}) {
		t.Errorf("expected [1 5 2], got %v", got)
	}
}

func TestOnceDropsUnmatchedItems(t *testing.T) {
	// Items no callback accepts are filtered out on purpose.
	never := func(string) (string, bool) { return "", false }
	got := collect(t, Once(pipeline.Of("a", "b"), never))
	if len(got) != 0 {
		t.Errorf("expected nothing, got %q", got)
	}
}

func TestOnceAbsentFirstCallbackIsTransparent(t *testing.T) {
	absent := func(string) (string, bool) { return "", false }
	upper := func(s string) (string, bool) { return strings.ToUpper(s), true }

	withAbsent := collect(t, Once(pipeline.FromSlice(sampleLines), absent, upper))
	alone := collect(t, Once(pipeline.FromSlice(sampleLines), upper))
	if !slices.Equal(withAbsent, alone) {
		t.Errorf("expected %q, got %q", alone, withAbsent)
	}
}

func TestOnceStopsAtFirstResult(t *testing.T) {
	called := 0
	first := func(s string) (string, bool) { return s, true }
	second := func(s string) (string, bool) {
		called++
		return s, true
	}
	collect(t, Once(pipeline.FromSlice(sampleLines), first, second))
	if called != 0 {
		t.Errorf("second callback should never run, ran %d times", called)
	}
}

func TestGrep(t *testing.T) {
	p, err := Grep(pipeline.FromSlice(sampleLines), `^GET /\w+\.`)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, p)
	want := []string{"GET /index.html\n", "GET /favicon.ico\n"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGrepInvalidPattern(t *testing.T) {
	_, err := Grep(pipeline.FromSlice(sampleLines), `(unclosed`)
	if !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Fatalf("expected MISCONFIGURATION, got %v", err)
	}
}

func TestFilterInvertIsComplement(t *testing.T) {
	tests := []struct {
		name   string
		filter func(*pipeline.Pipeline[string], ...MatchOption) *pipeline.Pipeline[string]
	}{
		{"grep", func(p *pipeline.Pipeline[string], opts ...MatchOption) *pipeline.Pipeline[string] {
			out, err := Grep(p, `log(in)?`, opts...)
			if err != nil {
				t.Fatal(err)
			}
			return out
		}},
		{"find", func(p *pipeline.Pipeline[string], opts ...MatchOption) *pipeline.Pipeline[string] {
			return Find(p, "GET", opts...)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := pipeline.FromSlice(sampleLines)
			kept := collect(t, tc.filter(src))
			dropped := collect(t, tc.filter(src, Inverted()))

			if len(kept)+len(dropped) != len(sampleLines) {
				t.Fatalf("kept %d + dropped %d != %d", len(kept), len(dropped), len(sampleLines))
			}
			// Both halves keep input order and never share an item.
			var merged []string
			i, j := 0, 0
			for _, line := range sampleLines {
				switch {
				case i < len(kept) && kept[i] == line:
					merged = append(merged, line)
					i++
				case j < len(dropped) && dropped[j] == line:
					merged = append(merged, line)
					j++
				}
			}
			if !slices.Equal(merged, sampleLines) {
				t.Errorf("kept %q and dropped %q do not partition the input", kept, dropped)
			}
		})
	}
}

func TestFind(t *testing.T) {
	got := collect(t, Find(pipeline.FromSlice(sampleLines), "login"))
	if !slices.Equal(got, []string{"POST /login\n", "GET /login\n"}) {
		t.Errorf("unexpected lines %q", got)
	}
	got = collect(t, Find(pipeline.FromSlice(sampleLines), "login", Invert(false)))
	if len(got) != 2 {
		t.Errorf("Invert(false) should not invert, got %q", got)
	}
}

func TestGrepFieldAndFindField(t *testing.T) {
	records := pipeline.Of(
		Record{"status": "200", "request": "GET /"},
		Record{"status": "404", "request": "GET /missing"},
		Record{"status": "500", "request": "POST /api"},
	)

	errs, err := GrepField(records, "status", `^[45]`)
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, errs); len(got) != 2 || got[0]["status"] != "404" {
		t.Errorf("unexpected records %v", got)
	}

	posts := collect(t, FindField(records, "request", "GET", Inverted()))
	if len(posts) != 1 || posts[0]["request"] != "POST /api" {
		t.Errorf("unexpected records %v", posts)
	}
}

func TestFieldFiltersUnknownField(t *testing.T) {
	records := pipeline.Of(Record{"status": "200"})
	p, err := GrepField(records, "agent", `.`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pipeline.Collect(context.Background(), p); !errors.HasCode(err, errors.ErrCodeUnknownField) {
		t.Errorf("GrepField: expected UNKNOWN_FIELD, got %v", err)
	}
	if _, err := pipeline.Collect(context.Background(), FindField(records, "agent", "x")); !errors.HasCode(err, errors.ErrCodeUnknownField) {
		t.Errorf("FindField: expected UNKNOWN_FIELD, got %v", err)
	}
}

func TestDig(t *testing.T) {
	records := pipeline.Of(Record{"request": "GET /"}, Record{"request": "GET /a"})
	got := collect(t, Dig(records, "request"))
	if !slices.Equal(got, []string{"GET /", "GET /a"}) {
		t.Errorf("unexpected values %q", got)
	}

	counts := pipeline.Of(map[string]int{"hits": 3})
	if got := collect(t, Dig(counts, "hits")); !slices.Equal(got, []int{3}) {
		t.Errorf("expected [3], got %v", got)
	}

	_, err := pipeline.Collect(context.Background(), Dig(records, "missing"))
	if !errors.HasCode(err, errors.ErrCodeUnknownField) {
		t.Errorf("expected UNKNOWN_FIELD, got %v", err)
	}
}

type hit struct {
	Path   string
	Status int
	secret string
}

func TestDigField(t *testing.T) {
	p, err := DigField[hit, string](pipeline.Of(hit{Path: "/a"}, hit{Path: "/b"}), "Path")
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, p); !slices.Equal(got, []string{"/a", "/b"}) {
		t.Errorf("unexpected values %q", got)
	}

	ptrs, err := DigField[*hit, int](pipeline.Of(&hit{Status: 200}, &hit{Status: 404}), "Status")
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, ptrs); !slices.Equal(got, []int{200, 404}) {
		t.Errorf("unexpected values %v", got)
	}

	asAny, err := DigField[hit, any](pipeline.Of(hit{Status: 1}), "Status")
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, asAny); len(got) != 1 || got[0] != 1 {
		t.Errorf("unexpected values %v", got)
	}
}

func TestDigFieldErrors(t *testing.T) {
	src := pipeline.Of(hit{})
	tests := []struct {
		name string
		dig  func() error
		code errors.ErrorCode
	}{
		{"missing field", func() error { _, err := DigField[hit, string](src, "Agent"); return err }, errors.ErrCodeUnknownField},
		{"unexported field", func() error { _, err := DigField[hit, string](src, "secret"); return err }, errors.ErrCodeUnknownField},
		{"wrong type", func() error { _, err := DigField[hit, string](src, "Status"); return err }, errors.ErrCodeMisconfiguration},
		{"not a struct", func() error { _, err := DigField[string, string](pipeline.Of("x"), "Len"); return err }, errors.ErrCodeMisconfiguration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.dig(); !errors.HasCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}

	p, err := DigField[*hit, string](pipeline.Of[*hit](nil), "Path")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pipeline.Collect(context.Background(), p); !errors.HasCode(err, errors.ErrCodeUnknownField) {
		t.Errorf("nil item: expected UNKNOWN_FIELD, got %v", err)
	}
}

func TestColumnsDiscard(t *testing.T) {
	p, err := Columns(pipeline.Of("a b c", "x y z"), " ", []string{"Left", Discard, "Right"}, SplitSeparator)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, p)
	want := []Record{{"Left": "a", "Right": "c"}, {"Left": "x", "Right": "z"}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if !maps.Equal(got[i], want[i]) {
			t.Errorf("record %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestColumnsSeparatorCapsSplits(t *testing.T) {
	p, err := Columns(pipeline.Of("k=v=w"), "=", []string{"key", "value"}, SplitSeparator)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, p)
	if got[0]["key"] != "k" || got[0]["value"] != "v=w" {
		t.Errorf("expected the last field to keep the rest, got %v", got[0])
	}
}

func TestColumnsShell(t *testing.T) {
	line := `10.0.0.1 - frank [10/Oct/2000:13:55:36] "GET /index.html HTTP/1.0" 200 2326` + "\n"
	template := []string{"ip", "ident", "authuser", "date", "request", "status", "bytes"}
	p, err := Columns(pipeline.Of(line), "ignored", template, SplitShell)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, p)[0]
	want := Record{
		"ip": "10.0.0.1", "ident": "-", "authuser": "frank", "date": "[10/Oct/2000:13:55:36]",
		"request": "GET /index.html HTTP/1.0", "status": "200", "bytes": "2326",
	}
	if !maps.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestColumnsShellEscapesAndOperators(t *testing.T) {
	template := []string{"ip", "ident", "authuser", "date", "request", "status", "bytes"}
	tests := []struct {
		name  string
		line  string
		field string
		want  string
	}{
		{
			"escaped byte in request",
			`10.0.0.1 - - [10/Oct/2000:13:55:36] "GET /a\x20b HTTP/1.1" 200 12`,
			"request", `GET /a\x20b HTTP/1.1`,
		},
		{
			"escaped quote in request",
			`10.0.0.1 - - [10/Oct/2000:13:55:36] "GET /\"q\" HTTP/1.1" 200 12`,
			"request", `GET /"q" HTTP/1.1`,
		},
		{
			"ampersand in authuser",
			`10.0.0.1 - a&b [10/Oct/2000:13:55:36] "GET / HTTP/1.1" 200 12`,
			"authuser", "a&b",
		},
		{
			"semicolon and pipe",
			`10.0.0.1 - x;y|z [10/Oct/2000:13:55:36] "GET / HTTP/1.1" 200 12`,
			"authuser", "x;y|z",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Columns(pipeline.Of(tc.line), " ", template, SplitShell)
			if err != nil {
				t.Fatal(err)
			}
			got := collect(t, p)[0]
			if got[tc.field] != tc.want {
				t.Errorf("%s: expected %q, got %q", tc.field, tc.want, got[tc.field])
			}
			if got["status"] != "200" {
				t.Errorf("expected the remaining columns in place, got %v", got)
			}
		})
	}
}

func TestColumnsFieldCountMismatch(t *testing.T) {
	for _, split := range []Split{SplitSeparator, SplitShell} {
		t.Run(split.String(), func(t *testing.T) {
			p, err := Columns(pipeline.Of("a b"), " ", []string{"x", "y", "z"}, split)
			if err != nil {
				t.Fatal(err)
			}
			_, err = pipeline.Collect(context.Background(), p)
			if !errors.HasCode(err, errors.ErrCodeFieldCountMismatch) {
				t.Fatalf("expected FIELD_COUNT_MISMATCH, got %v", err)
			}
		})
	}
}

func TestColumnsMalformedLine(t *testing.T) {
	p, err := Columns(pipeline.Of(`a "b c`), " ", []string{"x"}, SplitShell)
	if err != nil {
		t.Fatal(err)
	}
	_, err = pipeline.Collect(context.Background(), p)
	if !errors.HasCode(err, errors.ErrCodeMalformedLine) {
		t.Fatalf("expected MALFORMED_LINE, got %v", err)
	}
}

func TestColumnsMisconfiguration(t *testing.T) {
	src := pipeline.Of("a b")
	if _, err := Columns(src, " ", nil, SplitSeparator); !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Errorf("empty template: expected MISCONFIGURATION, got %v", err)
	}
	if _, err := Columns(src, "", []string{"a"}, SplitSeparator); !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Errorf("empty separator: expected MISCONFIGURATION, got %v", err)
	}
	if _, err := Columns(src, "", []string{"a"}, SplitShell); err != nil {
		t.Errorf("shell split ignores the separator, got %v", err)
	}
	if _, err := Columns(src, " ", []string{"a"}, Split(9)); !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Errorf("unknown split: expected MISCONFIGURATION, got %v", err)
	}
}

func TestParseSplit(t *testing.T) {
	if s, err := ParseSplit("split"); err != nil || s != SplitSeparator {
		t.Errorf("split: got %v, %v", s, err)
	}
	if s, err := ParseSplit("shlex"); err != nil || s != SplitShell {
		t.Errorf("shlex: got %v, %v", s, err)
	}
	if _, err := ParseSplit("csv"); !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Errorf("csv: expected MISCONFIGURATION, got %v", err)
	}
}

func TestColumnsRoundTrip(t *testing.T) {
	lines := []string{
		"a,b,c\n",
		"1,2,3,4\n",
		",,\n",
		"x,y,\r\n",
	}
	fields := []string{"first", "second", "rest"}
	parsed, err := Columns(pipeline.FromSlice(lines), ",", fields, SplitSeparator)
	if err != nil {
		t.Fatal(err)
	}
	joined, err := Uncolumns(parsed, ",", fields)
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, joined); !slices.Equal(got, lines) {
		t.Errorf("expected %q, got %q", lines, got)
	}
}

func TestUncolumns(t *testing.T) {
	records := pipeline.Of(Record{"ip": "10.0.0.1", "status": "200"})
	p, err := Uncolumns(records, "\t", []string{"status", "ip"})
	if err != nil {
		t.Fatal(err)
	}
	if got := collect(t, p); !slices.Equal(got, []string{"200\t10.0.0.1"}) {
		t.Errorf("unexpected lines %q", got)
	}

	missing, err := Uncolumns(records, " ", []string{"bytes"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pipeline.Collect(context.Background(), missing); !errors.HasCode(err, errors.ErrCodeUnknownField) {
		t.Errorf("expected UNKNOWN_FIELD, got %v", err)
	}

	if _, err := Uncolumns(records, " ", nil); !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Errorf("expected MISCONFIGURATION, got %v", err)
	}
}

func TestChomp(t *testing.T) {
	got := collect(t, Chomp(pipeline.Of("a\n", "b\r\n", "c", "d\n\n", "e\r")))
	want := []string{"a", "b", "c", "d\n", "e\r"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "access.log")
	sub := filepath.Join(dir, "archive")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	paths := pipeline.Of(file, sub, filepath.Join(dir, "vanished"))

	if got := collect(t, Files(paths)); !slices.Equal(got, []string{file}) {
		t.Errorf("Files: expected only %q, got %q", file, got)
	}
	if got := collect(t, Dirs(paths)); !slices.Equal(got, []string{sub}) {
		t.Errorf("Dirs: expected only %q, got %q", sub, got)
	}
}
