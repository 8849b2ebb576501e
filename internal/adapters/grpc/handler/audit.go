package handler

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ogurasousui/payroll-forensics/internal/adapters/workbook"
	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/benford"
	"github.com/ogurasousui/payroll-forensics/internal/core/dataset"
	"github.com/ogurasousui/payroll-forensics/internal/core/report"
)

const dateLayout = "2006-01-02"

// AuditHandler は監査ユースケースを gRPC で公開します。
type AuditHandler struct {
	uc       audit.UseCase
	defaults audit.Params
	mappings map[dataset.Kind]map[string]string
	logger   *zap.Logger
}

var _ AuditServer = (*AuditHandler)(nil)

// NewAuditHandler は AuditHandler を生成します。defaults と mappings はリクエストで上書きされない限り使われます。
func NewAuditHandler(uc audit.UseCase, defaults audit.Params, mappings map[dataset.Kind]map[string]string, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{uc: uc, defaults: defaults, mappings: mappings, logger: logger}
}

// RunAudit は監査を実行し、ルールの実行状況とシートを返します。
func (h *AuditHandler) RunAudit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := h.run(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	resp, err := structpb.NewStruct(toResponse(res, report.Assemble(res)))
	if err != nil {
		return nil, toStatusError(fmt.Errorf("handler: encode response: %w", err))
	}
	return resp, nil
}

// ExportWorkbook は監査を実行し、結果の .xlsx を返します。
func (h *AuditHandler) ExportWorkbook(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	res, err := h.run(ctx, req)
	if err != nil {
		return nil, toStatusError(err)
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf, report.Assemble(res)); err != nil {
		return nil, toStatusError(err)
	}
	return wrapperspb.Bytes(buf.Bytes()), nil
}

func (h *AuditHandler) run(ctx context.Context, req *structpb.Struct) (*audit.Result, error) {
	in, err := h.parseRequest(req)
	if err != nil {
		return nil, err
	}
	res, err := h.uc.Run(ctx, in)
	if err != nil {
		h.logger.Warn("audit failed", zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (h *AuditHandler) parseRequest(req *structpb.Struct) (audit.RunInput, error) {
	in := audit.RunInput{Params: h.defaults, Mappings: h.mappings}
	if req == nil {
		return in, nil
	}

	for key, v := range req.GetFields() {
		switch key {
		case "profile":
			s, ok := v.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return in, fmt.Errorf("%w: profile must be a string", errInvalidRequest)
			}
			in.Params.Profile = audit.Profile(s.StringValue)
		case "min_attendance_days":
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
				return in, fmt.Errorf("%w: min_attendance_days must be an integer", errInvalidRequest)
			}
			in.Params.MinAttendanceDays = int(n.NumberValue)
		case "benford_threshold_pct":
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return in, fmt.Errorf("%w: benford_threshold_pct must be a number", errInvalidRequest)
			}
			in.Params.BenfordThresholdPct = n.NumberValue
		case "benford_enabled":
			b, ok := v.GetKind().(*structpb.Value_BoolValue)
			if !ok {
				return in, fmt.Errorf("%w: benford_enabled must be a boolean", errInvalidRequest)
			}
			in.Params.BenfordEnabled = b.BoolValue
		case "mappings":
			m, err := parseMappings(v)
			if err != nil {
				return in, err
			}
			in.Mappings = m
		default:
			return in, fmt.Errorf("%w: unknown field %q", errInvalidRequest, key)
		}
	}
	return in, nil
}

func parseMappings(v *structpb.Value) (map[dataset.Kind]map[string]string, error) {
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("%w: mappings must be an object", errInvalidRequest)
	}
	out := make(map[dataset.Kind]map[string]string, len(s.GetFields()))
	for rawKind, fields := range s.GetFields() {
		kind, err := dataset.ParseKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		fs := fields.GetStructValue()
		if fs == nil {
			return nil, fmt.Errorf("%w: mappings.%s must be an object", errInvalidRequest, rawKind)
		}
		manual := make(map[string]string, len(fs.GetFields()))
		for field, col := range fs.GetFields() {
			c, ok := col.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return nil, fmt.Errorf("%w: mappings.%s.%s must be a string", errInvalidRequest, rawKind, field)
			}
			manual[field] = c.StringValue
		}
		out[kind] = manual
	}
	return out, nil
}

func toResponse(res *audit.Result, wb report.Workbook) map[string]any {
	rules := make([]any, 0, len(res.Statuses))
	for _, s := range res.Statuses {
		status := "skipped"
		if s.Ran {
			status = "ran"
		}
		rules = append(rules, map[string]any{
			"name":     string(s.Rule),
			"status":   status,
			"findings": s.Findings,
			"note":     s.Note,
		})
	}

	outliers := make([]any, 0, len(res.BenfordOutliers))
	for _, o := range res.BenfordOutliers {
		outliers = append(outliers, map[string]any{
			"digit":         o.Digit,
			"observed_pct":  o.ObservedPct,
			"expected_pct":  o.ExpectedPct,
			"deviation_pct": o.DeviationPct,
		})
	}

	warnings := make([]any, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		warnings = append(warnings, w.String())
	}

	sheets := make([]any, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		header := make([]any, len(s.Header))
		for i, col := range s.Header {
			header[i] = col
		}
		rows := make([]any, 0, len(s.Rows))
		for _, r := range s.Rows {
			cells := make([]any, len(r))
			for i, c := range r {
				cells[i] = cellValue(c)
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, map[string]any{"name": s.Name, "header": header, "rows": rows})
	}

	return map[string]any{
		"run_id":       res.RunID,
		"generated_at": res.GeneratedAt.UTC().Format(time.RFC3339),
		"profile":      string(res.Params.Profile),
		"rules":        rules,
		"warnings":     warnings,
		"benford": map[string]any{
			"observations":   res.Benford.Observations,
			"chi_square":     res.Benford.ChiSquare,
			"critical_value": benford.CriticalValue,
			"outliers":       outliers,
		},
		"sheets": sheets,
	}
}

func cellValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(dateLayout)
	}
	return v
}
