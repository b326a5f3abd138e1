package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	entgen "github.com/goliatone/go-entgen"
	"github.com/goliatone/go-entgen/pkg/document"
	"github.com/goliatone/go-entgen/pkg/tui"
)

func main() {
	templatePath := flag.String("template", "", "template document path (YAML or JSON)")
	entityPath := flag.String("entity", "", "raw entity JSON path")
	op := flag.String("op", "build", "operation: build, selections, or flatten")
	output := flag.String("output", "", "output file (stdout if empty)")
	interactive := flag.Bool("interactive", false, "walk the template interactively instead of reading -entity")
	timeout := flag.Duration("timeout", 0, "optional timeout for interactive sessions")
	flag.Parse()

	if *templatePath == "" {
		log.Fatal("missing -template")
	}

	doc, err := document.ReadFile(*templatePath)
	if err != nil {
		log.Fatalf("Failed to read template: %v", err)
	}
	tmpl, err := entgen.ParseTemplate(doc)
	if err != nil {
		log.Fatalf("Failed to parse template: %v", err)
	}

	var raw entgen.RawEntity
	if *interactive {
		raw, err = walkInteractive(tmpl, *timeout)
		if err != nil {
			log.Fatalf("Interactive session failed: %v", err)
		}
	} else if *entityPath != "" {
		data, err := os.ReadFile(*entityPath)
		if err != nil {
			log.Fatalf("Failed to read entity: %v", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			log.Fatalf("Failed to parse entity: %v", err)
		}
	}

	result, err := run(*op, &raw, tmpl)
	if err != nil {
		log.Fatalf("Failed to %s: %v", *op, err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Result written to %s\n", *output)
	} else {
		fmt.Println(string(payload))
	}
}

func run(op string, raw *entgen.RawEntity, tmpl *entgen.Template) (any, error) {
	switch op {
	case "build":
		built, err := entgen.Build(raw, tmpl)
		if err != nil {
			return nil, err
		}
		return built.Values, nil
	case "selections":
		available, err := entgen.AvailableSelections(raw, tmpl)
		if err != nil {
			return nil, err
		}
		return selectionSummaries(available), nil
	case "flatten":
		return entgen.New().FlattenOptions(raw), nil
	default:
		return nil, fmt.Errorf("unknown op %q", op)
	}
}

type selectionSummary struct {
	Key     string   `json:"key"`
	Name    string   `json:"name,omitempty"`
	Min     int      `json:"min"`
	Max     *int     `json:"max,omitempty"`
	Options []string `json:"options"`
}

// selectionSummaries projects selections to a JSON-friendly shape; the model
// types carry function fields that do not serialize.
func selectionSummaries(selections []entgen.Selection) []selectionSummary {
	out := make([]selectionSummary, 0, len(selections))
	for _, sel := range selections {
		summary := selectionSummary{
			Key:  sel.Key,
			Name: sel.Name,
			Min:  sel.Min,
			Max:  sel.Max,
		}
		for _, opt := range sel.Options {
			summary.Options = append(summary.Options, opt.Key)
		}
		out = append(out, summary)
	}
	return out
}

func walkInteractive(tmpl *entgen.Template, timeout time.Duration) (entgen.RawEntity, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	walker := tui.NewWalker()
	raw, _, err := walker.Walk(ctx, tmpl)
	return raw, err
}
