// Command quizsrs is the collaborator front-end for the quiz core:
// it imports authored text into validated module documents, re-checks
// and normalizes existing documents, and splits/merges question batches
// for offline content editing. All file and database I/O lives here;
// the core packages only see values.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"quizsrs/internal/batch"
	"quizsrs/internal/config"
	"quizsrs/internal/db"
	"quizsrs/internal/models"
	"quizsrs/internal/parser"
	"quizsrs/internal/services"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: quizsrs <command> [flags]

commands:
  import    parse an authored text file into a module document
  validate  report violations in a module document
  normalize rewrite a module document with defaults and repairs applied
  batch     split a module's questions into batch files for editing
  merge     merge edited batch files back into a module
  list      list modules stored in the database

run "quizsrs <command> -h" for command flags
`)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("quizsrs: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "import":
		runImport(cfg, args)
	case "validate":
		runValidate(args)
	case "normalize":
		runNormalize(args)
	case "batch":
		runBatch(args)
	case "merge":
		runMerge(args)
	case "list":
		runList(cfg, args)
	default:
		usage()
		os.Exit(2)
	}
}

func runImport(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	out := fs.String("o", "", "output path for the module JSON (default stdout)")
	dbPath := fs.String("db", cfg.DBPath, "sqlite database to persist the module into")
	strict := fs.Bool("strict", false, "fail on any diagnostic, not only on hard parse failure")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("import: exactly one input file required")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	res := parser.Parse(string(raw))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s:%d: %s\n", fs.Arg(0), d.Line, d.Message)
	}
	if res.Failed() {
		log.Fatalf("import: no module recovered from %s", fs.Arg(0))
	}
	if *strict && len(res.Diagnostics) > 0 {
		log.Fatalf("import: %d diagnostic(s) and -strict is set", len(res.Diagnostics))
	}

	// Violations are reported before normalization repairs them, so
	// duplicate ids stay visible even though the output is clean.
	for _, v := range services.CheckModule(res.Module) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", v.Kind, v.Message)
	}
	module := services.NormalizeModule(*res.Module)

	writeModule(*out, module)

	if *dbPath != "" {
		store, err := db.Open(*dbPath)
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		defer store.Close()
		id, err := store.SaveModule("", module)
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		fmt.Fprintf(os.Stderr, "stored module %s as %s\n", module.Name, id)
	}
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	mastery := fs.Bool("mastery", false, "also check mastery-state consistency per question")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("validate: exactly one module JSON file required")
	}

	module := readModule(fs.Arg(0))
	violations := services.CheckModule(&module)
	if *mastery {
		for ci := range module.Chapters {
			for qi := range module.Chapters[ci].Questions {
				violations = append(violations, services.CheckMastery(&module.Chapters[ci].Questions[qi])...)
			}
		}
	}
	for _, v := range violations {
		fmt.Printf("%s: %s\n", v.Kind, v.Message)
	}
	if len(violations) > 0 {
		log.Fatalf("validate: %d violation(s)", len(violations))
	}
	fmt.Println("ok")
}

func runNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	out := fs.String("o", "", "output path (default stdout)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("normalize: exactly one module JSON file required")
	}
	writeModule(*out, services.NormalizeModule(readModule(fs.Arg(0))))
}

func runBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", "batches", "directory to write batch files into")
	size := fs.Int("size", batch.DefaultSize, "questions per batch")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("batch: exactly one module JSON file required")
	}

	module := readModule(fs.Arg(0))
	batches := batch.Split(module, *size)
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("batch: %v", err)
	}
	for _, b := range batches {
		path := filepath.Join(*dir, fmt.Sprintf("batch-%02d.json", b.BatchIndex))
		writeJSON(path, b)
	}
	fmt.Fprintf(os.Stderr, "wrote %d batch file(s) to %s\n", len(batches), *dir)
}

func runMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	dir := fs.String("dir", filepath.Join("batches", "processed"), "directory holding edited batch files")
	out := fs.String("o", "", "output path (default stdout)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatalf("merge: exactly one module JSON file required")
	}

	module := readModule(fs.Arg(0))
	paths, err := filepath.Glob(filepath.Join(*dir, "batch-*.json"))
	if err != nil {
		log.Fatalf("merge: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("merge: no batch files in %s", *dir)
	}
	sort.Strings(paths)

	var batches []batch.Batch
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			log.Fatalf("merge: %v", err)
		}
		var b batch.Batch
		if err := json.Unmarshal(raw, &b); err != nil {
			log.Fatalf("merge: %s: %v", p, err)
		}
		batches = append(batches, b)
	}

	merged, problems := batch.Apply(module, batches)
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "batch %d, question %s: %s\n", p.BatchIndex, p.QuestionID, p.Message)
	}
	writeModule(*out, services.NormalizeModule(merged))
	if len(problems) > 0 {
		log.Fatalf("merge: %d entr%s rejected", len(problems), plural(len(problems), "y", "ies"))
	}
}

func runList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", cfg.DBPath, "sqlite database path")
	fs.Parse(args)
	if *dbPath == "" {
		log.Fatalf("list: no database configured (set -db or QUIZSRS_DB)")
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	defer store.Close()

	infos, err := store.ListModules()
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	for _, info := range infos {
		fmt.Printf("%s\t%s\t%s\n", info.ID, info.UpdatedAt.Format("2006-01-02 15:04"), info.Name)
	}
}

func readModule(path string) models.Module {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read module: %v", err)
	}
	var m models.Module
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Fatalf("decode module %s: %v", path, err)
	}
	return m
}

func writeModule(path string, m models.Module) {
	if path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			log.Fatalf("encode module: %v", err)
		}
		return
	}
	writeJSON(path, m)
}

func writeJSON(path string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
