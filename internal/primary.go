package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/scalemonitor/internal/ifaces"
)

// PrimaryHostStateProvider tells whether this instance is currently the one
// allowed to write scale metrics. Who gets to be primary is decided elsewhere.
type PrimaryHostStateProvider interface {
	IsPrimary(ctx context.Context) (bool, error)
}

// StaticPrimary is a fixed primary signal, for single-instance deployments.
type StaticPrimary bool

func (p StaticPrimary) IsPrimary(context.Context) (bool, error) {
	return bool(p), nil
}

// ParameterPrimary reads the ID of the primary instance from an SSM parameter
// maintained by an external election, and compares it to its own.
type ParameterPrimary struct {
	SSM           ifaces.SSM
	ParameterName string
	InstanceID    string
	Tracer        trace.Tracer
}

func (p *ParameterPrimary) IsPrimary(ctx context.Context) (bool, error) {
	ctx, span := p.Tracer.Start(ctx, "aws.ssm.primary")
	defer span.End()

	span.SetAttributes(
		attribute.String("parameter", p.ParameterName),
		attribute.String("instance_id", p.InstanceID),
	)

	output, err := p.SSM.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(p.ParameterName),
	})

	if err != nil {
		return false, fmt.Errorf("could not get primary host parameter from SSM: %w", err)
	} else if output.Parameter == nil || output.Parameter.Value == nil {
		return false, errors.New("could not find primary host parameter value in SSM")
	}

	primary := strings.TrimSpace(*output.Parameter.Value) == p.InstanceID
	span.SetAttributes(attribute.Bool("primary", primary))

	return primary, nil
}
