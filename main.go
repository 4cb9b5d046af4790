// utas — twine localization catalog converter for Android and iOS.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appkode/utas/androidres"
	"github.com/appkode/utas/config"
	"github.com/appkode/utas/fileutil"
	"github.com/appkode/utas/i18n"
	"github.com/appkode/utas/iosres"
	"github.com/appkode/utas/twinefile"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// defaultStem names the merged iOS output files when no override is
// given: Localizable.strings is what NSLocalizedString loads by default.
const defaultStem = "Localizable"

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "utas",
		Short: "Convert twine localization catalogs to Android and iOS resources",
		Long: `utas — convert twine localization catalogs to platform resources.

Reads twine catalogs from an input directory and writes native
resource files for the chosen platform:

  android   values-<locale>/<name>.xml per input catalog
  ios       <locale>.lproj/<stem>.strings + <stem>.stringsdict, merged

Directories may be given as arguments or in a .utas.yaml file in the
working directory; arguments win. When .utas.yaml names a platform,
running utas with no subcommand generates for that platform.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if cfg == nil || cfg.Platform == "" {
				return cmd.Help()
			}
			return runForPlatform(cfg, args)
		},
	}

	root.AddCommand(
		newAndroidCmd(),
		newIOSCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("utas version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// android (one values-<locale> tree per input catalog)
// ---------------------------------------------------------------------------

func newAndroidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "android [input-dir] [output-dir]",
		Short: "Generate Android string resources",
		Long: `Generate Android string resources from twine catalogs.

Each catalog <name>.txt in the input directory becomes
values-<locale>/<name>.xml files in the output directory, one per
locale found in the catalog. Plural keys become <plurals> blocks.

Catalogs are independent: a broken catalog is reported and skipped,
the remaining ones are still generated.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			inputDir, outputDir, err := resolveDirs(args, cfg)
			if err != nil {
				return err
			}
			return runAndroid(inputDir, outputDir)
		},
	}

	return cmd
}

func runAndroid(inputDir, outputDir string) error {
	catalogs, err := fileutil.ListFiles(inputDir)
	if err != nil {
		return err
	}
	if len(catalogs) == 0 {
		return fmt.Errorf(i18n.T("no twine catalogs found in %s"), inputDir)
	}

	failed := 0
	locales := make(map[string]bool)

	for _, rel := range catalogs {
		result, err := generateAndroid(filepath.Join(inputDir, rel))
		if err != nil {
			logError(i18n.T("unable to process %s: %v"), rel, err)
			failed++
			continue
		}
		if err := result.Write(outputDir, stemOf(rel)); err != nil {
			logError(i18n.T("unable to process %s: %v"), rel, err)
			failed++
			continue
		}
		for _, locale := range result.Locales() {
			locales[locale] = true
		}
	}

	if failed > 0 {
		return fmt.Errorf(i18n.T("%d of %d catalogs failed"), failed, len(catalogs))
	}

	logSuccess(i18n.N("generated resources for %d locale", "generated resources for %d locales", len(locales)), len(locales))
	return nil
}

func generateAndroid(path string) (*androidres.GenResult, error) {
	src, err := parseCatalog(path)
	if err != nil {
		return nil, err
	}
	return androidres.Generate(src)
}

// parseCatalog parses one catalog, routing skipped-entry diagnostics
// to the warning log.
func parseCatalog(path string) (*twinefile.File, error) {
	return twinefile.ParseFile(path, func(format string, args ...any) {
		logWarning(i18n.T(format), args...)
	})
}

// ---------------------------------------------------------------------------
// ios (merged <locale>.lproj tree)
// ---------------------------------------------------------------------------

func newIOSCmd() *cobra.Command {
	var (
		defaultLang string
		stem        string
	)

	cmd := &cobra.Command{
		Use:   "ios [input-dir] [output-dir]",
		Short: "Generate iOS string resources",
		Long: `Generate iOS string resources from twine catalogs.

All catalogs in the input directory merge into a single
<locale>.lproj/<stem>.strings file (plus <stem>.stringsdict when plural
keys exist) per locale, in input order.

With --default-lang, locales missing a key borrow the default
language's value, so no locale ships with holes.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			inputDir, outputDir, err := resolveDirs(args, cfg)
			if err != nil {
				return err
			}
			if cfg != nil {
				if defaultLang == "" {
					defaultLang = cfg.DefaultLang
				}
				if !cmd.Flags().Changed("stem") && cfg.Stem != "" {
					stem = cfg.Stem
				}
			}
			return runIOS(inputDir, outputDir, defaultLang, stem)
		},
	}

	cmd.Flags().StringVar(&defaultLang, "default-lang", "", "Locale whose values back-fill untranslated keys")
	cmd.Flags().StringVar(&stem, "stem", defaultStem, "Output file name without extension")

	return cmd
}

func runIOS(inputDir, outputDir, defaultLang, stem string) error {
	catalogs, err := fileutil.ListFiles(inputDir)
	if err != nil {
		return err
	}
	if len(catalogs) == 0 {
		return fmt.Errorf(i18n.T("no twine catalogs found in %s"), inputDir)
	}

	// The per-locale files merge keys from every catalog, so a single
	// broken catalog aborts the whole run: a partial merge would
	// silently drop keys.
	sources := make([]*twinefile.File, 0, len(catalogs))
	for _, rel := range catalogs {
		src, err := parseCatalog(filepath.Join(inputDir, rel))
		if err != nil {
			return fmt.Errorf(i18n.T("unable to process %s: %v"), rel, err)
		}
		sources = append(sources, src)
	}

	result, err := iosres.Generate(sources, defaultLang)
	if err != nil {
		return err
	}
	if err := result.Write(outputDir, stem); err != nil {
		return err
	}

	n := len(result.Locales())
	logSuccess(i18n.N("generated resources for %d locale", "generated resources for %d locales", n), n)
	return nil
}

// ---------------------------------------------------------------------------
// Shared argument plumbing
// ---------------------------------------------------------------------------

// runForPlatform dispatches a bare invocation on the .utas.yaml
// platform selector. Load has already rejected unknown platforms.
func runForPlatform(cfg *config.File, args []string) error {
	inputDir, outputDir, err := resolveDirs(args, cfg)
	if err != nil {
		return err
	}
	switch cfg.Platform {
	case config.PlatformAndroid:
		return runAndroid(inputDir, outputDir)
	default:
		stem := cfg.Stem
		if stem == "" {
			stem = defaultStem
		}
		return runIOS(inputDir, outputDir, cfg.DefaultLang, stem)
	}
}

// resolveDirs picks the input and output directories from positional
// arguments, falling back to .utas.yaml values.
func resolveDirs(args []string, cfg *config.File) (inputDir, outputDir string, err error) {
	if len(args) > 0 {
		inputDir = args[0]
	} else if cfg != nil {
		inputDir = cfg.InputDir
	}
	if inputDir == "" {
		return "", "", fmt.Errorf("%s", i18n.T("input directory not set (pass it as an argument or set input_dir in .utas.yaml)"))
	}

	if len(args) > 1 {
		outputDir = args[1]
	} else if cfg != nil {
		outputDir = cfg.OutputDir
	}
	if outputDir == "" {
		return "", "", fmt.Errorf("%s", i18n.T("output directory not set (pass it as an argument or set output_dir in .utas.yaml)"))
	}

	return inputDir, outputDir, nil
}

// stemOf strips the extension from a catalog path: strings.txt names
// its Android output files strings.xml.
func stemOf(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
