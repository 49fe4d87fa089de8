package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
)

// printReport renders a findings report to stdout, worst findings first
// within their input order preserved per classification block.
func printReport(report *confusion.Report) {
	fmt.Println()
	fmt.Println(StyleTitle.Render("Dependency confusion report"))
	printDetail("Run %s · %d packages · %s", report.RunID, report.Total, report.Elapsed.Round(time.Millisecond))
	fmt.Println()

	order := []confusion.Classification{
		confusion.ClassExposed,
		confusion.ClassVersionMismatch,
		confusion.ClassIndeterminate,
		confusion.ClassSafe,
	}
	for _, class := range order {
		if report.Counts[class] == 0 {
			continue
		}
		for _, f := range report.Findings {
			if f.Classification != class {
				continue
			}
			printFinding(f)
		}
	}

	fmt.Println()
	printSummary(report)
}

func printFinding(f confusion.Finding) {
	style, icon := classStyle(f.Classification)
	line := style.Render(icon) + " " + StyleValue.Render(f.Package.Name)
	if f.Package.Version != "" {
		line += StyleDim.Render("@" + f.Package.Version)
	}
	line += " " + style.Render(string(f.Classification))
	fmt.Println(line)

	switch {
	case f.Error != "":
		printDetail("%s", f.Error)
	case f.Classification == confusion.ClassExposed:
		printDetail("declared %s, claimable on the public registry", f.Package.Source)
	case f.Classification == confusion.ClassVersionMismatch && f.Record != nil:
		printDetail("registry latest %s, local %s", f.Record.LatestVersion, f.Package.Version)
	}
}

func printSummary(report *confusion.Report) {
	exposed := report.Counts[confusion.ClassExposed]
	mismatched := report.Counts[confusion.ClassVersionMismatch]
	unresolved := report.Counts[confusion.ClassIndeterminate]

	switch {
	case exposed > 0:
		printError("%d of %d packages exposed", exposed, report.Total)
	case mismatched > 0 || unresolved > 0:
		printInfo("No exposure found (%d mismatched, %d unresolved)", mismatched, unresolved)
	default:
		printSuccess("All %d packages safe", report.Total)
	}
}

// writeReport writes the report as indented JSON.
func writeReport(path string, report *confusion.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
