// iocgen renders a YAML model file into the database definition and startup
// script the soft IOC server consumes, without launching the server. Useful
// for inspecting generated records and for committing definitions to
// configuration repositories.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-softioc/pkg/database"
	"github.com/goliatone/go-softioc/pkg/modelfile"
	"github.com/goliatone/go-softioc/pkg/records"
)

func main() {
	model := flag.String("model", "", "model file to render (YAML)")
	device := flag.String("device", "", "device namespace (prompted when absent)")
	output := flag.String("output", "", "output directory (stdout if empty)")
	flag.Parse()

	if *model == "" {
		log.Fatal("a -model file is required")
	}

	doc, err := modelfile.Load(*model)
	if err != nil {
		log.Fatalf("Failed to load model file: %v", err)
	}

	ns := *device
	if ns == "" {
		ns = doc.Device
	}
	if ns == "" {
		prompt := &survey.Input{Message: "Device namespace:"}
		if err := survey.AskOne(prompt, &ns, survey.WithValidator(survey.Required)); err != nil {
			log.Fatalf("Failed to read device namespace: %v", err)
		}
	}

	schema, err := doc.Schema(modelfile.DefaultRegistry())
	if err != nil {
		log.Fatalf("Failed to build schema: %v", err)
	}

	recs := make([]*records.Record, 0, schema.Len())
	for _, def := range schema.Fields() {
		recs = append(recs, def.Record())
	}
	macros := append([]database.Macro{{Key: "device", Value: ns}}, doc.DatabaseMacros()...)

	out, err := database.Generate(schema.Name(), recs, macros)
	if err != nil {
		log.Fatalf("Failed to generate database: %v", err)
	}

	if *output == "" {
		fmt.Print(out.Database)
		fmt.Print(out.Script)
		return
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	dbPath := filepath.Join(*output, schema.Name()+".db")
	cmdPath := filepath.Join(*output, schema.Name()+".cmd")
	if err := os.WriteFile(dbPath, []byte(out.Database), 0o644); err != nil {
		log.Fatalf("Failed to write database: %v", err)
	}
	if err := os.WriteFile(cmdPath, []byte(out.Script), 0o644); err != nil {
		log.Fatalf("Failed to write script: %v", err)
	}
	fmt.Printf("Wrote %s and %s\n", dbPath, cmdPath)
}
