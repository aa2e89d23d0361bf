package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/deltakit/deltakit/internal/delta"
	"github.com/deltakit/deltakit/internal/expect"
	"github.com/deltakit/deltakit/internal/logging"
	"github.com/deltakit/deltakit/internal/quality"
	"github.com/deltakit/deltakit/internal/tabio"
	"github.com/deltakit/deltakit/internal/web"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  diff   -keys id[,..] [-abs-tol F] [-rel-tol F] [-out report.html] a.csv b.csv\n")
	fmt.Fprintf(os.Stderr, "  check  -rules rules.txt data.csv\n")
	fmt.Fprintf(os.Stderr, "  audit  data.csv\n")
	fmt.Fprintf(os.Stderr, "  serve  [-addr :8080]\n\n")
	fmt.Fprintf(os.Stderr, "Input files ending in .parquet are read as Parquet, anything else as CSV.\n")
}

func main() {
	_, closeFn := logging.SetupLogger()
	defer closeFn()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "diff":
		err = runDiff(os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	case "audit":
		err = runAudit(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}

// runDiff compares two tables. Finding mismatches is a normal result:
// only argument, file and schema errors exit non-zero.
func runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	keysFlag := fs.String("keys", "", "comma-separated key column(s) to join on")
	absTol := fs.Float64("abs-tol", 0, "absolute tolerance for numeric comparison")
	relTol := fs.Float64("rel-tol", 0, "relative tolerance for numeric comparison")
	out := fs.String("out", "", "path to save the HTML report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("diff expects exactly two input files, got %d", fs.NArg())
	}

	keys := splitKeys(*keysFlag)
	if len(keys) == 0 {
		return fmt.Errorf("at least one key column is required (-keys)")
	}
	if *absTol < 0 || *relTol < 0 {
		return fmt.Errorf("tolerances must be non-negative")
	}

	pathA, pathB := fs.Arg(0), fs.Arg(1)
	tblA, err := tabio.ReadTable(pathA)
	if err != nil {
		return err
	}
	tblB, err := tabio.ReadTable(pathB)
	if err != nil {
		return err
	}

	// Pre-check so the message names the offending file, not just the
	// column.
	for _, key := range keys {
		if !tblA.HasColumn(key) {
			return fmt.Errorf("key %q not found in %s", key, pathA)
		}
		if !tblB.HasColumn(key) {
			return fmt.Errorf("key %q not found in %s", key, pathB)
		}
	}

	d, err := delta.New(tblA, tblB, keys, delta.WithTolerance(*absTol, *relTol))
	if err != nil {
		return err
	}

	fmt.Println("Comparison complete.")
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Partition", "Rows"})
	tw.Append([]string{"rows in A only", fmt.Sprintf("%d", d.UnmatchedA().NumRows())})
	tw.Append([]string{"rows in B only", fmt.Sprintf("%d", d.UnmatchedB().NumRows())})
	tw.Append([]string{"mismatches", fmt.Sprintf("%d", d.Mismatches().NumRows())})
	tw.Render()

	if *out != "" {
		if err := d.SaveHTML(*out); err != nil {
			return err
		}
		fmt.Printf("Report saved to %s\n", *out)
	}
	return nil
}

// runCheck evaluates expectations against one table. A failing report
// is normal output, not an error.
func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	rulesPath := fs.String("rules", "", "path to the rule file, one rule per line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("check expects exactly one input file, got %d", fs.NArg())
	}
	if *rulesPath == "" {
		return fmt.Errorf("a rule file is required (-rules)")
	}

	rules, err := os.ReadFile(*rulesPath)
	if err != nil {
		return fmt.Errorf("read rules: %w", err)
	}
	tbl, err := tabio.ReadTable(fs.Arg(0))
	if err != nil {
		return err
	}

	columnRules, rowRules := expect.Parse(string(rules))
	report, err := expect.Evaluate(tbl, columnRules, rowRules, nil)
	if err != nil {
		return err
	}

	fmt.Println(report.HumanReadable())
	return nil
}

// runAudit runs the inference-driven quality audit and prints the
// issues table.
func runAudit(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("audit expects exactly one input file, got %d", fs.NArg())
	}

	tbl, err := tabio.ReadTable(fs.Arg(0))
	if err != nil {
		return err
	}

	issues := quality.Audit(tbl, quality.DefaultOptions())
	if issues.NumRows() == 0 {
		fmt.Println("No issues found.")
		return nil
	}

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader(issues.ColumnNames())
	for i := 0; i < issues.NumRows(); i++ {
		row := make([]string, issues.NumCols())
		for c := 0; c < issues.NumCols(); c++ {
			row[c] = issues.ColumnAt(c).Values[i].String()
		}
		tw.Append(row)
	}
	tw.Render()
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", defaultAddr(), "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	slog.Info("starting web UI", "addr", *addr)
	return web.NewServer().ListenAndServe(*addr)
}

func defaultAddr() string {
	if addr := os.Getenv("DELTAKIT_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

func splitKeys(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
