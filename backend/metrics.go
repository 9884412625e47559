package backend

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/core"
)

var (
	meter = otel.Meter("github.com/qbridge-team/qbridge-engine/backend")

	submissionCounter metric.Int64Counter
	resultCounter     metric.Int64Counter
)

func init() {
	var err error
	submissionCounter, err = meter.Int64Counter("qbridge.circuits.submitted",
		metric.WithDescription("Circuits dispatched to an execution target."))
	if err != nil {
		zap.L().Warn(fmt.Sprintf("failed to create submission counter/reason:%s", err))
	}
	resultCounter, err = meter.Int64Counter("qbridge.results.retrieved",
		metric.WithDescription("Outcome tables fetched and cached."))
	if err != nil {
		zap.L().Warn(fmt.Sprintf("failed to create result counter/reason:%s", err))
	}
}

func targetAttrs(desc *core.TargetDescriptor) metric.AddOption {
	name := "unknown"
	if desc != nil {
		name = desc.Name
	}
	return metric.WithAttributes(attribute.String("target", name))
}

func countSubmissions(ctx context.Context, desc *core.TargetDescriptor, n int) {
	if submissionCounter == nil {
		return
	}
	submissionCounter.Add(ctx, int64(n), targetAttrs(desc))
}

func countResults(ctx context.Context, desc *core.TargetDescriptor, n int) {
	if resultCounter == nil {
		return
	}
	resultCounter.Add(ctx, int64(n), targetAttrs(desc))
}
