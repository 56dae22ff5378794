// Copyright (C) 2024 PartiQL-Go Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command execore is the execution core's CLI/REPL: a session submits
// a query, the core runs it through one of the three engines and
// prints either the resulting value stream or the accumulated
// structured error list. No SQL frontend lives in this repository, so
// a "query" here is the name of one of this binary's own demo plan
// graphs (see demo.go) rather than PartiQL text — name resolution, the
// logical-plan builder and the parser itself are external
// collaborators this core only consumes the output of.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/partiqlgo/execore/compile"
	"github.com/partiqlgo/execore/engine/hybrid"
	"github.com/partiqlgo/execore/engine/legacy"
	"github.com/partiqlgo/execore/engine/vectorized"
	"github.com/partiqlgo/execore/execerr"
	"github.com/partiqlgo/execore/reader"
	"github.com/partiqlgo/execore/value"
)

var (
	dashv      bool
	dashStrict bool
	dashEngine string
	dashBench  bool
	dashQuery  string
	dashList   bool
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose: trace recoverable errors as they are recorded")
	flag.BoolVar(&dashStrict, "strict", false, "run in strict mode: a recoverable error suppresses the result")
	flag.StringVar(&dashEngine, "engine", "legacy", "execution engine: legacy, vectorized, or hybrid")
	flag.BoolVar(&dashBench, "bench", false, "run the BENCH_* benchmark sweep instead of the REPL")
	flag.StringVar(&dashQuery, "query", "", "run a single named query and exit, instead of starting the REPL")
	flag.BoolVar(&dashList, "list", false, "print the available demo query names and exit")
}

func unknownEngineError(name string) error {
	return fmt.Errorf("unknown engine %q (available: legacy, vectorized, hybrid)", name)
}

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "", 0)
	if dashv {
		execerr.Errorf = func(format string, args ...any) { logger.Printf(format, args...) }
	}

	if dashList {
		fmt.Println(strings.Join(demoNames(), "\n"))
		return
	}

	if dashBench {
		runBench(logger)
		return
	}

	if dashQuery != "" {
		if err := runOne(dashEngine, dashQuery, os.Stdout, logger); err != nil {
			logger.Print(err)
			os.Exit(1)
		}
		return
	}

	os.Exit(repl(os.Stdin, os.Stdout, logger))
}

// repl reads one query name per line until EOF, running each through
// -engine and printing its result or error list; it returns the
// process exit code: 0 unless at least one line produced a Fatal
// error, per the CLI's exit-code contract.
func repl(in *os.File, out *os.File, logger *log.Logger) int {
	scanner := bufio.NewScanner(in)
	exit := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runOne(dashEngine, line, out, logger); err != nil {
			logger.Print(err)
			exit = 1
		}
	}
	return exit
}

// runOne runs one named query through engine and prints its result
// (or structured error list) to out.
func runOne(engine, query string, out *os.File, logger *log.Logger) error {
	switch engine {
	case "legacy":
		g, ok := literalQueries[query]
		if !ok {
			return unknownQueryError(query)
		}
		v, acc, err := legacy.New(compile.StandardBuiltins(), value.SystemContext{}).Run(g(), nil, dashStrict)
		return report(v, acc, err, out)
	case "hybrid":
		g, ok := literalQueries[query]
		if !ok {
			return unknownQueryError(query)
		}
		v, acc, err := hybrid.New(compile.StandardBuiltins()).Run(g(), nil, dashStrict)
		return report(v, acc, err, out)
	case "vectorized":
		g, rd, err := vectorizedReplGraph(query)
		if err != nil {
			return err
		}
		b, acc, err := vectorized.New().Run(g, map[string]reader.BatchReader{"t": rd}, dashStrict)
		if err != nil {
			return err
		}
		if len(acc.Errors()) > 0 {
			printErrors(acc, out)
		}
		if acc.Suppressed() {
			return nil
		}
		fmt.Fprintln(out, formatBatch(b))
		return nil
	default:
		return unknownEngineError(engine)
	}
}

func report(v value.Value, acc *execerr.Accumulator, err error, out *os.File) error {
	if err != nil {
		return err
	}
	if len(acc.Errors()) > 0 {
		printErrors(acc, out)
	}
	if acc.Suppressed() {
		return nil
	}
	fmt.Fprintln(out, v.String())
	return nil
}

func printErrors(acc *execerr.Accumulator, out *os.File) {
	for _, e := range acc.Errors() {
		fmt.Fprintln(out, e.Error())
	}
}
