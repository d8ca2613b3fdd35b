// Command ddwfttw-sim reads a SimulationInput JSON from a file argument (or
// stdin), runs the simulation, and writes the SimulationLog JSON to stdout.
// With -db the run is also archived to a SQLite database for later analysis.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/montagdude/ddwfttw-vehicle/internal/engine"
	"github.com/montagdude/ddwfttw-vehicle/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "archive the run to this SQLite database")
	flag.Parse()

	var (
		data []byte
		err  error
	)

	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	result, err := engine.RunJSON(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}

	if *dbPath != "" {
		if err := archive(*dbPath, data, result); err != nil {
			fmt.Fprintf(os.Stderr, "archive error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println(result)
}

// archive re-parses the run's input and output into their struct forms and
// saves both to the database at path.
func archive(path string, input []byte, output string) error {
	var in engine.SimulationInput
	if err := json.Unmarshal(input, &in); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}
	var simLog engine.SimulationLog
	if err := json.Unmarshal([]byte(output), &simLog); err != nil {
		return fmt.Errorf("parsing output: %w", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	id, err := st.SaveRun(in, simLog)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "archived run %s\n", id)
	return nil
}
