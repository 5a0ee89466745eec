package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/licitapp/licitapp/internal/catalog"
	"github.com/licitapp/licitapp/internal/models"
	"github.com/licitapp/licitapp/internal/placsp"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to the tender snapshot (defaults to <output_dir>/tenders-active.json)")
	query := flag.String("q", "", "free-text filter over titulo, organo and cpv")
	region := flag.String("region", "", "region filter (provincia, or ccaa when provincia is missing)")
	minImporte := flag.String("min", "", "minimum importe")
	latest := flag.Bool("latest", false, "show the most recently published tenders instead of searching")
	listRegions := flag.Bool("regions", false, "list the distinct regions and exit")
	flag.Parse()

	cfg, err := placsp.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load sync config: %v", err)
	}
	path := *snapshotPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, "tenders-active.json")
	}

	snap, err := catalog.LoadFile(path)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	if *listRegions {
		for _, r := range catalog.Regions(snap.Tenders) {
			fmt.Println(r)
		}
		return
	}

	var results []models.Tender
	if *latest {
		results = catalog.Latest(snap.Tenders)
	} else {
		results = catalog.Search(snap.Tenders, catalog.Criteria{
			Query:      *query,
			Region:     *region,
			MinImporte: *minImporte,
		})
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Título", "Región", "Importe", "Límite", "Publicada"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 60},
		{Number: 3, Align: text.AlignRight},
	})

	for _, tender := range results {
		importe := "-"
		if tender.Importe != nil {
			importe = fmt.Sprintf("%.2f €", *tender.Importe)
		}
		t.AppendRow(table.Row{
			truncate(tender.Titulo, 60),
			orDash(tender.Location()),
			importe,
			orDash(tender.FechaLimite),
			orDash(tender.FechaPublicacion),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d licitaciones", len(results)), "", "", "", ""})
	t.Render()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
