package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/VitalGuard/internal/application/assessment"
	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
	"github.com/turtacn/VitalGuard/pkg/types/clinical"
)

// NewStabilityCmd creates the stability command.
func NewStabilityCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Score vital stability (0-100) for one or more snapshots",
		Long: "Score vital stability from blood pressure, heart rate, glucose, SpO2 and BMI.\n" +
			"The input holds one snapshot or a list of snapshots, as YAML or JSON.",
		Example: "  vitalguard stability -f snapshot.yaml -o table\n  cat snapshots.json | vitalguard stability",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssessment(cmd, file, assessment.KindStability)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "snapshot file, or - for stdin")
	return cmd
}

// NewRiskCmd creates the risk command.
func NewRiskCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Estimate ten-year cardiovascular risk (WHO/ISH SEAR-D)",
		Long: "Estimate ten-year cardiovascular risk from age, sex, smoking, diabetes,\n" +
			"blood pressure and cholesterol. The input holds one snapshot or a list.",
		Example: "  vitalguard risk -f patient.yaml -o json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssessment(cmd, file, assessment.KindRisk)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "snapshot file, or - for stdin")
	return cmd
}

func runAssessment(cmd *cobra.Command, file string, kind assessment.Kind) error {
	c, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	snaps, list, err := readSnapshots(file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	engine, err := c.Engine(ctx)
	if err != nil {
		return err
	}

	if !list {
		item, err := assessSingle(ctx, engine, kind, snaps[0])
		if err != nil {
			return err
		}
		if c.OutputFormat == "json" {
			return PrintResult(cmd, item.payload())
		}
		return PrintResult(cmd, report{item})
	}

	reqs := make([]assessment.Request, len(snaps))
	for i, s := range snaps {
		reqs[i] = assessment.Request{ID: strconv.Itoa(i), Kind: kind, Snapshot: s}
	}
	results, err := engine.AssessBatch(ctx, reqs, c.Config.Engine.BatchConcurrency)
	if err != nil {
		return err
	}

	rep := make(report, len(results))
	var (
		firstErr error
		failed   int
	)
	for i, r := range results {
		rep[i] = assessedItem{Index: i, Stability: r.Stability, Risk: r.Risk}
		if r.Err != nil {
			rep[i].Error = newItemError(r.Err)
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
		}
	}
	if err := PrintResult(cmd, rep); err != nil {
		return err
	}
	if firstErr != nil {
		c.Logger.Warn("snapshots failed", logging.Int("failed", failed), logging.Int("items", len(rep)))
		return errors.Wrap(firstErr, errors.CodeUnknown, fmt.Sprintf("%d of %d snapshots failed", failed, len(rep)))
	}
	return nil
}

func assessSingle(ctx context.Context, engine *assessment.Engine, kind assessment.Kind, snap clinical.Snapshot) (assessedItem, error) {
	switch kind {
	case assessment.KindStability:
		r, err := engine.AssessStability(ctx, snap)
		if err != nil {
			return assessedItem{}, err
		}
		return assessedItem{Stability: &r}, nil
	case assessment.KindRisk:
		r, err := engine.AssessRisk(ctx, snap)
		if err != nil {
			return assessedItem{}, err
		}
		return assessedItem{Risk: &r}, nil
	}
	return assessedItem{}, errors.New(errors.ErrCodeUnsupportedAssessment, "unsupported assessment kind").WithDetail(string(kind))
}

type itemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newItemError(err error) *itemError {
	return &itemError{Code: errors.GetCode(err).String(), Message: err.Error()}
}

// assessedItem is one row of command output. Exactly one of Stability, Risk
// or Error is set.
type assessedItem struct {
	Index     int                       `json:"index"`
	Stability *clinical.StabilityResult `json:"stability,omitempty"`
	Risk      *clinical.RiskResult      `json:"risk,omitempty"`
	Error     *itemError                `json:"error,omitempty"`
}

func (it assessedItem) payload() interface{} {
	if it.Stability != nil {
		return it.Stability
	}
	return it.Risk
}

type report []assessedItem

func (r report) TableHeaders() []string {
	if len(r) > 0 && r.hasRisk() {
		return []string{"#", "SCORE", "CATEGORY", "10Y RISK", "URGENCY", "CONFIDENCE", "ERROR"}
	}
	return []string{"#", "SCORE", "STATUS", "CRITICAL", "ALERTS", "CONFIDENCE", "ERROR"}
}

func (r report) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, it := range r {
		row := []string{strconv.Itoa(it.Index), "", "", "", "", "", ""}
		switch {
		case it.Error != nil:
			row[6] = it.Error.Code
		case it.Stability != nil:
			s := it.Stability
			row[1] = fmt.Sprintf("%d/100", s.Score)
			row[2] = s.Status.Label
			row[3] = strconv.FormatBool(s.Critical)
			row[4] = strconv.Itoa(len(s.CriticalAlerts))
			row[5] = fmt.Sprintf("%d%% %s", s.Confidence.Score, s.Confidence.Level)
		case it.Risk != nil:
			k := it.Risk
			row[1] = fmt.Sprintf("%d/%d", k.Score, k.MaxScore)
			row[2] = string(k.Category)
			row[3] = k.TenYearRisk
			row[4] = string(k.Urgency)
			row[5] = fmt.Sprintf("%d%% %s", k.Confidence.Score, k.Confidence.Level)
		}
		rows = append(rows, row)
	}
	return rows
}

func (r report) hasRisk() bool {
	for _, it := range r {
		if it.Risk != nil {
			return true
		}
		if it.Stability != nil {
			return false
		}
	}
	return false
}

func (r report) String() string {
	var sb strings.Builder
	for i, it := range r {
		if len(r) > 1 {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "Snapshot #%d\n", it.Index)
		}
		switch {
		case it.Error != nil:
			fmt.Fprintf(&sb, "Error: %s\n", it.Error.Message)
		case it.Stability != nil:
			writeStability(&sb, it.Stability)
		case it.Risk != nil:
			writeRisk(&sb, it.Risk)
		}
	}
	return sb.String()
}

func writeStability(sb *strings.Builder, s *clinical.StabilityResult) {
	fmt.Fprintf(sb, "Vital stability: %d/100 (%s)\n", s.Score, s.Status.Label)
	fmt.Fprintf(sb, "Confidence: %d%% %s - %s\n", s.Confidence.Score, s.Confidence.Level, s.Confidence.Message)
	writeBreakdown(sb, s.Breakdown, clinical.StabilityFactors)
	if len(s.CriticalAlerts) > 0 {
		sb.WriteString("Critical alerts:\n")
		for _, a := range s.CriticalAlerts {
			fmt.Fprintf(sb, "  [%s] %s: %s -> %s\n", a.Severity, a.Type, a.Message, a.Action)
		}
	}
	writeRecommendations(sb, s.Recommendations)
}

func writeRisk(sb *strings.Builder, k *clinical.RiskResult) {
	fmt.Fprintf(sb, "Cardiovascular risk: %d/%d points, %s (%s ten-year), urgency %s\n",
		k.Score, k.MaxScore, k.Category, k.TenYearRisk, k.Urgency)
	fmt.Fprintf(sb, "Confidence: %d%% %s - %s\n", k.Confidence.Score, k.Confidence.Level, k.Confidence.Message)
	writeBreakdown(sb, k.Breakdown, clinical.RiskFactors)
	if len(k.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range k.Warnings {
			fmt.Fprintf(sb, "  - %s\n", w)
		}
	}
	if len(k.DataGaps) > 0 {
		fmt.Fprintf(sb, "Data gaps: %s\n", strings.Join(k.DataGaps, ", "))
	}
	writeRecommendations(sb, k.Recommendations)
	if len(k.NextSteps) > 0 {
		sb.WriteString("Next steps:\n")
		for _, n := range k.NextSteps {
			fmt.Fprintf(sb, "  %d. %s\n", n.Priority, n.Action)
		}
	}
	fmt.Fprintf(sb, "%s\n", k.Disclaimer.Primary)
}

func writeBreakdown(sb *strings.Builder, b clinical.Breakdown, order []clinical.Factor) {
	headers := []string{"COMPONENT", "SCORE", "STATUS", "MESSAGE"}
	var rows [][]string
	for _, f := range order {
		c, ok := b[f]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(f), fmt.Sprintf("%d/%d", c.Score, c.MaxScore), c.Status, c.Message})
	}
	if len(rows) == 0 {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(FormatTable(headers, rows), "\n"), "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

func writeRecommendations(sb *strings.Builder, recs []clinical.Recommendation) {
	if len(recs) == 0 {
		return
	}
	sb.WriteString("Recommendations:\n")
	for _, r := range recs {
		fmt.Fprintf(sb, "  [%s] %s: %s\n", r.Priority, r.Category, r.Action)
	}
}
