package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/analysis"
	"github.com/gaen-tech/leadscout/internal/model"
)

var (
	batchCSV    string
	batchLimit  int
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze companies from a CSV file",
	Long: `Reads companies from a CSV and analyzes them sequentially with
rate limiting. The CSV needs a url column; name, industry, and location
columns are optional. A headerless single-column file of URLs also works.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		companies, err := readCompaniesCSV(batchCSV)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(companies) > batchLimit {
			companies = companies[:batchLimit]
		}
		if len(companies) == 0 {
			return eris.New("batch: no companies in CSV")
		}

		env, err := initAnalysis(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runner := analysis.NewRunner(env.Analyzer, batchDelay())
		progress, err := runner.Run(ctx, companies, func(p model.BatchProgress) {
			zap.L().Info("batch progress",
				zap.Int("completed", p.Completed),
				zap.Int("failed", p.Failed),
				zap.Int("total", p.Total),
			)
		})
		if err != nil {
			return eris.Wrap(err, "batch")
		}

		if batchOutput != "" {
			data, err := json.MarshalIndent(progress, "", "  ")
			if err != nil {
				return eris.Wrap(err, "batch: marshal results")
			}
			if err := os.WriteFile(batchOutput, data, 0o644); err != nil {
				return eris.Wrap(err, "batch: write results")
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "path to the companies CSV (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of companies to analyze (0 = all)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write batch results to a JSON file")
	_ = batchCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(batchCmd)
}

// readCompaniesCSV parses the batch input file. Column headers are
// matched case-insensitively; a file without headers is treated as one
// URL per line.
func readCompaniesCSV(path string) ([]model.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	first, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv")
	}

	cols := map[string]int{}
	hasHeader := false
	for i, h := range first {
		name := strings.ToLower(strings.TrimSpace(h))
		switch name {
		case "url", "website", "name", "company", "industry", "location":
			cols[name] = i
			hasHeader = true
		}
	}

	var companies []model.Company
	appendRow := func(record []string) error {
		url := field(record, cols, "url", "website")
		if !hasHeader {
			url = strings.TrimSpace(record[0])
		}
		if url == "" {
			return nil
		}
		company, err := model.CompanyFromURL(url)
		if err != nil {
			zap.L().Warn("batch: skipping unparseable row", zap.String("url", url), zap.Error(err))
			return nil
		}
		if name := field(record, cols, "name", "company"); name != "" {
			company.Name = name
		}
		if industry := field(record, cols, "industry"); industry != "" {
			company.Industry = industry
		}
		if location := field(record, cols, "location"); location != "" {
			company.Location = location
		}
		companies = append(companies, company)
		return nil
	}

	if !hasHeader {
		if err := appendRow(first); err != nil {
			return nil, err
		}
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv")
		}
		if err := appendRow(record); err != nil {
			return nil, err
		}
	}
	return companies, nil
}

func field(record []string, cols map[string]int, names ...string) string {
	for _, name := range names {
		if i, ok := cols[name]; ok && i < len(record) {
			if v := strings.TrimSpace(record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
