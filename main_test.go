package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/appkode/utas/config"
	"github.com/appkode/utas/fileutil"
)

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile() error: %v", err)
	}
	return string(data)
}

func TestRunAndroid_EndToEnd(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "strings.txt", `[find]
	en = Find
	ru = Найти
[search]
	en = Search
	ru = Поиск
	mn = Хайх
`)

	if err := runAndroid(input, output); err != nil {
		t.Fatalf("runAndroid() error: %v", err)
	}

	wantEN := `<?xml version="1.0" encoding="utf-8"?>

<resources>
  <string name="find">Find</string>
  <string name="search">Search</string>
</resources>
`
	if got := readOutput(t, filepath.Join(output, "values-en", "strings.xml")); got != wantEN {
		t.Fatalf("values-en/strings.xml = %q, want %q", got, wantEN)
	}

	wantMN := `<?xml version="1.0" encoding="utf-8"?>

<resources>
  <string name="search">Хайх</string>
</resources>
`
	if got := readOutput(t, filepath.Join(output, "values-mn", "strings.xml")); got != wantMN {
		t.Fatalf("values-mn/strings.xml = %q, want %q", got, wantMN)
	}
}

func TestRunAndroid_PluralsAndPlaceholders(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "app.txt", `[songs]
	en:one = %d song
	en:other = %d songs
[greeting]
	en = Hello %@, you have %d items
`)

	if err := runAndroid(input, output); err != nil {
		t.Fatalf("runAndroid() error: %v", err)
	}

	want := `<?xml version="1.0" encoding="utf-8"?>

<resources>
  <plurals name="songs">
    <item quantity="one">%1$d song</item>
    <item quantity="other">%1$d songs</item>
  </plurals>
  <string name="greeting">Hello %1$s, you have %2$d items</string>
</resources>
`
	if got := readOutput(t, filepath.Join(output, "values-en", "app.xml")); got != want {
		t.Fatalf("values-en/app.xml = %q, want %q", got, want)
	}
}

func TestRunAndroid_OneTreePerCatalog(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "common.txt", "[yes]\nen = Yes\n")
	writeCatalog(t, input, "login.txt", "[title]\nen = Login\n")

	if err := runAndroid(input, output); err != nil {
		t.Fatalf("runAndroid() error: %v", err)
	}

	files, err := fileutil.ListFiles(output)
	if err != nil {
		t.Fatalf("fileutil.ListFiles() error: %v", err)
	}
	want := []string{
		filepath.Join("values-en", "common.xml"),
		filepath.Join("values-en", "login.xml"),
	}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("output files = %v, want %v", files, want)
	}
}

func TestRunAndroid_MatchesExpectedTree(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	expected := t.TempDir()

	writeCatalog(t, input, "strings.txt", `[kek]
	ru = Кек
[lil]
	ru = Лил
`)

	expectedXML := `<?xml version="1.0" encoding="utf-8"?>

<resources>
  <string name="kek">Кек</string>
  <string name="lil">Лил</string>
</resources>
`
	if err := os.MkdirAll(filepath.Join(expected, "values-ru"), 0755); err != nil {
		t.Fatalf("os.MkdirAll() error: %v", err)
	}
	writeCatalog(t, filepath.Join(expected, "values-ru"), "strings.xml", expectedXML)

	if err := runAndroid(input, output); err != nil {
		t.Fatalf("runAndroid() error: %v", err)
	}

	diffs, err := fileutil.CompareDirs(expected, output)
	if err != nil {
		t.Fatalf("fileutil.CompareDirs() error: %v", err)
	}
	if len(diffs) != 0 {
		t.Fatalf("output tree differs from expected:\n%s", fileutil.FormatDirDiffs(diffs))
	}
}

func TestRunForPlatform(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "strings.txt", "[hello]\nen = Hello\n")

	cfg := &config.File{
		Platform:  config.PlatformAndroid,
		InputDir:  input,
		OutputDir: output,
	}
	if err := runForPlatform(cfg, nil); err != nil {
		t.Fatalf("runForPlatform(android) error: %v", err)
	}
	if got := readOutput(t, filepath.Join(output, "values-en", "strings.xml")); !strings.Contains(got, `<string name="hello">Hello</string>`) {
		t.Fatalf("android dispatch output = %q", got)
	}

	iosOutput := t.TempDir()
	cfg = &config.File{
		Platform:  config.PlatformIOS,
		InputDir:  input,
		OutputDir: iosOutput,
	}
	if err := runForPlatform(cfg, nil); err != nil {
		t.Fatalf("runForPlatform(ios) error: %v", err)
	}
	if got := readOutput(t, filepath.Join(iosOutput, "en.lproj", "Localizable.strings")); got != "\"hello\" = \"Hello\";\n\n" {
		t.Fatalf("ios dispatch output = %q", got)
	}
}

func TestRunAndroid_EmptyInputDir(t *testing.T) {
	err := runAndroid(t.TempDir(), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no twine catalogs") {
		t.Fatalf("runAndroid() error = %v, want no-catalogs error", err)
	}
}

func TestRunAndroid_ContinuesPastBrokenCatalog(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "bad.txt", "[key]\nthis line has no delimiter\n")
	writeCatalog(t, input, "good.txt", "[ok]\nen = OK\n")

	err := runAndroid(input, output)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("runAndroid() error = %v, want failure summary", err)
	}

	if got := readOutput(t, filepath.Join(output, "values-en", "good.xml")); !strings.Contains(got, `<string name="ok">OK</string>`) {
		t.Fatalf("good catalog not generated, values-en/good.xml = %q", got)
	}
}

func TestRunIOS_EndToEnd(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "common.txt", `[hello]
	en = Hello
	fr = Bonjour
`)
	writeCatalog(t, input, "extra.txt", `[bye]
	en = Bye
`)

	if err := runIOS(input, output, "en", "Localizable"); err != nil {
		t.Fatalf("runIOS() error: %v", err)
	}

	wantEN := "\"hello\" = \"Hello\";\n\n\"bye\" = \"Bye\";\n\n"
	if got := readOutput(t, filepath.Join(output, "en.lproj", "Localizable.strings")); got != wantEN {
		t.Fatalf("en.lproj/Localizable.strings = %q, want %q", got, wantEN)
	}

	// fr misses "bye", so the en value fills in.
	wantFR := "\"hello\" = \"Bonjour\";\n\n\"bye\" = \"Bye\";\n\n"
	if got := readOutput(t, filepath.Join(output, "fr.lproj", "Localizable.strings")); got != wantFR {
		t.Fatalf("fr.lproj/Localizable.strings = %q, want %q", got, wantFR)
	}
}

func TestRunIOS_PluralsLandInStringsdict(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "app.txt", `[cats]
	en:one = %d cat
	en:other = %d cats
`)

	if err := runIOS(input, output, "", "App"); err != nil {
		t.Fatalf("runIOS() error: %v", err)
	}

	dict := readOutput(t, filepath.Join(output, "en.lproj", "App.stringsdict"))
	for _, fragment := range []string{
		"<key>cats</key>",
		"<string>%#@value@</string>",
		"<string>NSStringPluralRuleType</string>",
		"<string>%1$d cat</string>",
		"<string>%1$d cats</string>",
	} {
		if !strings.Contains(dict, fragment) {
			t.Fatalf("App.stringsdict missing %q:\n%s", fragment, dict)
		}
	}

	if got := readOutput(t, filepath.Join(output, "en.lproj", "App.strings")); got != "" {
		t.Fatalf("App.strings = %q, want empty", got)
	}
}

func TestRunIOS_AbortsOnBrokenCatalog(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()

	writeCatalog(t, input, "bad.txt", "[key]\nthis line has no delimiter\n")
	writeCatalog(t, input, "good.txt", "[ok]\nen = OK\n")

	if err := runIOS(input, output, "", "Localizable"); err == nil {
		t.Fatal("runIOS() error = nil, want parse failure")
	}

	if _, err := os.Stat(filepath.Join(output, "en.lproj")); !os.IsNotExist(err) {
		t.Fatalf("en.lproj exists after aborted run, stat error = %v", err)
	}
}

func TestResolveDirs(t *testing.T) {
	cfg := &config.File{InputDir: "cfg-in", OutputDir: "cfg-out"}

	in, out, err := resolveDirs([]string{"arg-in", "arg-out"}, cfg)
	if err != nil || in != "arg-in" || out != "arg-out" {
		t.Fatalf("resolveDirs(args, cfg) = %q, %q, %v; want arguments to win", in, out, err)
	}

	in, out, err = resolveDirs(nil, cfg)
	if err != nil || in != "cfg-in" || out != "cfg-out" {
		t.Fatalf("resolveDirs(nil, cfg) = %q, %q, %v; want config fallback", in, out, err)
	}

	if _, _, err := resolveDirs(nil, nil); err == nil {
		t.Fatal("resolveDirs(nil, nil) error = nil, want missing input dir error")
	}
	if _, _, err := resolveDirs([]string{"in"}, nil); err == nil {
		t.Fatal("resolveDirs(input only) error = nil, want missing output dir error")
	}
}

func TestStemOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"strings.txt", "strings"},
		{filepath.Join("sub", "app.txt"), "app"},
		{"noext", "noext"},
	}
	for _, tc := range tests {
		if got := stemOf(tc.path); got != tc.want {
			t.Fatalf("stemOf(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
