// CLI to convert COUNTER usage reports between tabular formats.
//
// $ ck-convert -o out.tsv jr1.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/miku/counterkit"
	"github.com/miku/counterkit/report"
	"github.com/miku/counterkit/tabular"
	log "github.com/sirupsen/logrus"
)

var (
	filetype    = flag.String("f", "", "input file type (csv, tsv, xlsx), default: guess from extension and content")
	format      = flag.String("t", "tsv", "output format, only tsv for now")
	output      = flag.String("o", "", "output file, default: stdout")
	showVersion = flag.Bool("version", false, "show version")
)

var help = fmt.Sprintf(`ck-convert reshapes COUNTER usage reports 🗃️

Reads a COUNTER 3, 4 or 5 report from a CSV, TSV or XLSX file, gzip and zstd
compressed files included, and writes it out as normalized TSV. Missing
months are zero filled and mandated metric lines are added where a report
type requires them.

Examples:

    $ ck-convert jr1.csv > jr1.tsv
    $ ck-convert -o db1.tsv db1_2016.xlsx

Usage:

    $ ck-convert [OPTIONS] FILE

`)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(counterkit.Version)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	r, err := tabular.ParseFile(flag.Arg(0), *filetype)
	if err != nil {
		log.Fatal(err)
	}
	if *output == "" {
		if err := report.WriteTSV(r, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := report.WriteFile(r, *output, *format); err != nil {
		log.Fatal(err)
	}
}
