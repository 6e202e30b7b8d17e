// uexpr - tag-table expression compiler
//
// Reads expression records as JSON lines and writes one Go source file
// of compiled conversion functions and lookup tables.
// Uses manual argument parsing so flags work with no space between
// flag and argument (-j4, -otags.go).
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/uexpr"
)

// version is set by GoReleaser at build time via -ldflags.
// For development builds, it will be "dev".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	shortUsage = "usage: uexpr [-o outfile] [-pkg name] [-j N] [-stats] [-d] [file ...]"
	longUsage  = `Arguments:
  -o outfile        write generated Go source to outfile (default: stdout)
  -pkg name         package name of the generated file (default "tags")

Performance options:
  -j N              use N parallel workers for normalization
                    (default: number of CPUs)

Reporting:
  -stats            print run statistics to stderr
  -d                dump normalized expression trees to stderr

Other:
  -h, --help        show this help message
  -version          show uexpr version and exit

Input is one JSON object per line with fields "type" ("ValueConv",
"PrintConv" or "Condition"), "expr" (original snippet text) and "ast"
(the PPI token tree). With no file arguments, records are read from
standard input.
`
)

func main() {
	outFile := ""
	pkgName := ""
	workers := 0
	showStats := false
	debug := false

	var i int
	for i = 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-o":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -o")
			}
			i++
			outFile = os.Args[i]
		case "-pkg":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -pkg")
			}
			i++
			pkgName = os.Args[i]
		case "-j":
			if i+1 >= len(os.Args) {
				errorExitf("flag needs an argument: -j")
			}
			i++
			n, err := strconv.Atoi(os.Args[i])
			if err != nil || n < 1 {
				errorExitf("invalid number of workers: %s", os.Args[i])
			}
			workers = n
		case "-stats":
			showStats = true
		case "-d":
			debug = true
		case "-h", "--help":
			fmt.Printf("uexpr %s - tag-table expression compiler\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "-version", "--version":
			fmt.Printf("uexpr version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			os.Exit(0)
		default:
			// Handle flags with no space: -otags.go, -j4, etc.
			switch {
			case strings.HasPrefix(arg, "-o"):
				outFile = arg[2:]
			case strings.HasPrefix(arg, "-j"):
				n, err := strconv.Atoi(arg[2:])
				if err != nil || n < 1 {
					errorExitf("invalid number of workers: %s", arg[2:])
				}
				workers = n
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}

	inputFiles := os.Args[i:]

	var input io.Reader
	if len(inputFiles) == 0 {
		input = os.Stdin
	} else {
		readers := make([]io.Reader, 0, len(inputFiles))
		for _, f := range inputFiles {
			if f == "-" {
				readers = append(readers, os.Stdin)
				continue
			}
			file, err := os.Open(f)
			if err != nil {
				errorExitf("cannot open file %s: %v", f, err)
			}
			defer file.Close()
			readers = append(readers, file)
		}
		input = io.MultiReader(readers...)
	}

	records, err := readRecords(input)
	if err != nil {
		errorExit(err)
	}
	if len(records) == 0 {
		errorExitf("no input records")
	}

	cfg := &uexpr.Config{
		Package: pkgName,
		Workers: workers,
	}
	if debug {
		cfg.Debug = os.Stderr
	}

	res, err := uexpr.Compile(records, cfg)
	if err != nil {
		errorExit(err)
	}

	if outFile == "" {
		fmt.Print(res.Source)
	} else if err := os.WriteFile(outFile, []byte(res.Source), 0o644); err != nil {
		errorExit(err)
	}

	if showStats {
		fmt.Fprint(os.Stderr, res.Stats.String())
	}
}

// readRecords parses one JSON record per input line. Blank lines are
// skipped; a malformed line is an error with its line number.
func readRecords(input io.Reader) ([]uexpr.Record, error) {
	var records []uexpr.Record
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec uexpr.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// errorExitf prints formatted error message and exits with code 1
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "uexpr: "+format+"\n", args...)
	os.Exit(1)
}

// errorExit prints error and exits with code 1
func errorExit(err error) {
	fmt.Fprintf(os.Stderr, "uexpr: %v\n", err)
	os.Exit(1)
}
