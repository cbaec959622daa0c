package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"cellscope-core/dna"
	"cellscope-core/microbe"
	"cellscope/internal/jsonlutil"
	"cellscope/internal/jsonutil"
	"cellscope/internal/writers"
	"cellscope/pkg/api"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var (
		cfg    = struct{ microbes, sequences, format string }{format: "text"}
		noSeqs bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the knowledge base with sequences and reverse complements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch cfg.format {
			case "text", "json", "jsonl":
			default:
				return usageErr(fmt.Errorf("--format must be text, json or jsonl (got %q)", cfg.format))
			}
			kb, err := microbe.LoadFileOrDefault(cfg.microbes)
			if err != nil {
				return usageErr(fmt.Errorf("knowledge base: %w", err))
			}
			cat, err := dna.LoadFileOrDefault(cfg.sequences)
			if err != nil {
				return usageErr(fmt.Errorf("sequence catalog: %w", err))
			}
			entries, err := catalogEntries(kb, cat, !noSeqs)
			if err != nil {
				return runtimeErr(err)
			}
			err = writeCatalog(cmd.OutOrStdout(), cfg.format, entries)
			if err != nil && !writers.IsBrokenPipe(err) {
				return runtimeErr(err)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfg.microbes, "microbes", "", "knowledge base YAML (default: built-in)")
	fs.StringVar(&cfg.sequences, "sequences", "", "sequence catalog YAML or FASTA (default: built-in)")
	fs.StringVarP(&cfg.format, "format", "f", cfg.format, "output format: text | json | jsonl")
	fs.BoolVar(&noSeqs, "no-sequences", false, "omit sequence columns")
	return cmd
}

func catalogEntries(kb *microbe.KnowledgeBase, cat *dna.Catalog, seqs bool) ([]api.MicrobeV1, error) {
	out := make([]api.MicrobeV1, 0, kb.Len())
	for _, r := range kb.Records() {
		e := api.MicrobeV1{Name: r.Name, Disease: r.Disease, Symptoms: r.Symptoms, Risk: string(r.Risk)}
		if seqs {
			fwd, rc, err := cat.Derive(r.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.Name, err)
			}
			e.DNASequence, e.ReverseComplement = fwd, rc
		}
		out = append(out, e)
	}
	return out, nil
}

func writeCatalog(w io.Writer, format string, entries []api.MicrobeV1) error {
	switch format {
	case "json":
		return jsonutil.EncodePretty(w, entries)
	case "jsonl":
		in, done := jsonlutil.Start(w, len(entries), func(enc *json.Encoder, e api.MicrobeV1) error {
			return enc.Encode(e)
		}, writers.IsBrokenPipe)
		for _, e := range entries {
			in <- e
		}
		close(in)
		return <-done
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MICROBE\tDISEASE\tSYMPTOMS\tRISK\tSEQUENCE\tREVERSE COMPLEMENT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Name, e.Disease, e.Symptoms, e.Risk, dash(e.DNASequence), dash(e.ReverseComplement))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
