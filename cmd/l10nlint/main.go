package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lifei6671/l10n"
	"github.com/lifei6671/l10n/cmd/l10nlint/checker"
)

func main() {
	configFile := flag.String("config", "", "configuration file (default: L10N_CONFIG_FILE, l10n.toml, config.toml)")
	dir := flag.String("d", "", "resource root directory, overrides the configuration")
	usagesFile := flag.String("usages", "", "YAML usage feed produced by call-site discovery")
	lenient := flag.Bool("lenient", false, "downgrade missing resource/message findings to warnings")
	failOnError := flag.Bool("fail", false, "exit with code 1 if any error-severity finding is reported")
	flag.Parse()

	report, err := checker.Run(checker.Options{
		ConfigFile: *configFile,
		Dir:        *dir,
		UsagesFile: *usagesFile,
		Lenient:    *lenient,
	})
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	printReport(report)

	if *failOnError && report.HasErrors() {
		os.Exit(1)
	}
}

func printReport(report *l10n.Report) {
	fmt.Println("=== L10N CHECK RESULT ===")

	findings := report.Findings()
	if len(findings) == 0 {
		fmt.Println("Findings: None")
		return
	}

	var nErrors, nWarnings int
	for _, f := range findings {
		switch f.Severity {
		case l10n.SeverityWarning:
			nWarnings++
			fmt.Printf("  - warning [%s] %s\n", f.Kind, f.Error())
		default:
			nErrors++
			fmt.Printf("  - error   [%s] %s\n", f.Kind, f.Error())
		}
	}
	fmt.Printf("Errors: %d, warnings: %d\n", nErrors, nWarnings)
}
